package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/ctai-labs/clinical-trial-ai/internal/config"
)

const (
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/openai/"
	openAIEndpoint = "https://api.openai.com/v1"

	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
)

const systemMessage = "You are an assistant for clinical trial data managers and CRAs. Answer precisely and use the numbers you are given."

// OpenAI talks to any chat-completions compatible endpoint: OpenAI itself,
// Azure OpenAI, or Gemini's compatibility layer.
type OpenAI struct {
	client *openai.Client
	cfg    config.LLMConfig
}

func NewOpenAI(cfg config.LLMConfig) (*OpenAI, error) {
	var client *openai.Client

	switch cfg.Provider {
	case "azure":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("azure provider requires LLM_ENDPOINT")
		}
		if cfg.Model == "" {
			return nil, fmt.Errorf("azure provider requires LLM_MODEL (deployment name)")
		}
		client = openai.NewClient(
			azure.WithEndpoint(cfg.Endpoint, cfg.APIVersion),
			azure.WithAPIKey(cfg.APIKey),
			option.WithMaxRetries(0),
		)
	case "gemini":
		if cfg.Endpoint == "" {
			cfg.Endpoint = geminiEndpoint
		}
		if cfg.Model == "" {
			cfg.Model = defaultGeminiModel
		}
		client = openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.Endpoint),
			option.WithMaxRetries(0),
		)
	case "openai", "":
		if cfg.Endpoint == "" {
			cfg.Endpoint = openAIEndpoint
		}
		if cfg.Model == "" {
			cfg.Model = defaultOpenAIModel
		}
		client = openai.NewClient(
			option.WithAPIKey(cfg.APIKey),
			option.WithBaseURL(cfg.Endpoint),
			option.WithMaxRetries(0),
		)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}

	slog.Info("LLM client created", "provider", cfg.Provider, "model", cfg.Model)
	return &OpenAI{
		client: client,
		cfg:    cfg,
	}, nil
}

// Model reports the model name requests are sent to by default.
func (o *OpenAI) Model() string {
	return o.cfg.Model
}

func (o *OpenAI) Complete(ctx context.Context, prompt string) (*Response, error) {
	slog.Debug("Sending completion request", "model", o.cfg.Model, "promptBytes", len(prompt))

	resp, err := o.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Model: openai.F(o.cfg.Model),
			Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage(systemMessage),
				openai.UserMessage(prompt),
			}),
			Temperature: openai.F(o.cfg.Temperature),
			MaxTokens:   openai.F(o.cfg.MaxTokens),
		},
	)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyCompletion
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
