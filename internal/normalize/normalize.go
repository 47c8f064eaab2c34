// Package normalize cleans up free-text model output before it is used as
// SQL or decoded as JSON.
package normalize

import (
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"
)

const fence = "```"

var (
	// openingFence matches ``` plus an optional language tag on its own line.
	openingFence = regexp.MustCompile("^```[A-Za-z0-9_+.-]*[ \t]*\r?\n")

	// inlineTag matches a sql or json tag glued to a single-line fence, as in
	// ```sql SELECT 1``` or ```json{"a": 1}```.
	inlineTag = regexp.MustCompile("(?i)^```(?:sql|json)\\b")
)

// StripCodeFence removes markdown code fences wrapping text. Fences are
// peeled until none remain, so StripCodeFence(StripCodeFence(s)) equals
// StripCodeFence(s).
func StripCodeFence(text string) string {
	out := strings.TrimSpace(text)
	for {
		next := stripOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

func stripOnce(s string) string {
	if strings.HasPrefix(s, fence) {
		if loc := openingFence.FindStringIndex(s); loc != nil {
			s = s[loc[1]:]
		} else if loc := inlineTag.FindStringIndex(s); loc != nil {
			s = s[loc[1]:]
		} else {
			s = strings.TrimPrefix(s, fence)
		}
	}
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// ParseOrDefault decodes a JSON object out of model output into a fresh T.
// Any failure, including empty input or trailing text, yields def unchanged
// and ok=false. Callers rely on this to turn malformed output into a visible
// fallback record instead of an error.
func ParseOrDefault[T any](text string, def T) (value T, ok bool) {
	out, err := ParseJSON[T](text)
	if err != nil {
		slog.Warn("Model output is not valid JSON, using fallback", "error", err)
		return def, false
	}
	return out, true
}

// ParseJSON strips code fences and strictly decodes a single JSON value.
func ParseJSON[T any](text string) (T, error) {
	var out T

	cleaned := StripCodeFence(text)
	if cleaned == "null" {
		return out, errors.New("null document")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	if dec.More() {
		return out, errors.New("trailing data after JSON document")
	}
	return out, nil
}
