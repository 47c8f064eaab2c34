// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/ctai-labs/clinical-trial-ai/internal/llm"
)

// Provider replays canned completions in order and records every prompt.
// Once the script is exhausted the last reply is repeated. A nil Err means
// success.
type Provider struct {
	mu      sync.Mutex
	Replies []string
	Err     error
	Prompts []string
}

func New(replies ...string) *Provider {
	return &Provider{Replies: replies}
}

func (p *Provider) Complete(_ context.Context, prompt string) (*llm.Response, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Prompts = append(p.Prompts, prompt)
	if p.Err != nil {
		return nil, p.Err
	}

	reply := ""
	if n := len(p.Replies); n > 0 {
		idx := len(p.Prompts) - 1
		if idx >= n {
			idx = n - 1
		}
		reply = p.Replies[idx]
	}
	return &llm.Response{Content: reply, Model: "scripted"}, nil
}

// Calls returns how many completions were requested.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Prompts)
}

// LastPrompt returns the most recent prompt, or "" if none was sent.
func (p *Provider) LastPrompt() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.Prompts) == 0 {
		return ""
	}
	return p.Prompts[len(p.Prompts)-1]
}
