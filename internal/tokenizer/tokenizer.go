// Package tokenizer estimates how many model tokens a rendered tree consumes.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters.
type Config struct {
	Model string
}

const (
	// DefaultModel is used when no model is configured.
	DefaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a Counter for the requested model together with the name it resolved to.
// Models without a dedicated encoding fall back to cl100k_base.
func NewCounter(cfg Config) (Counter, string, error) {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	lowerModel := strings.ToLower(model)

	if isOpenAIModel(lowerModel) {
		encoding, err := cachedEncoding(lowerModel, func() (*tiktoken.Tiktoken, error) {
			return tiktoken.EncodingForModel(lowerModel)
		})
		if err == nil {
			return encodingCounter{encoding: encoding, name: lowerModel}, lowerModel, nil
		}
	}
	fallback, fallbackErr := cachedEncoding(defaultEncodingName, func() (*tiktoken.Tiktoken, error) {
		return tiktoken.GetEncoding(defaultEncodingName)
	})
	if fallbackErr != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackErr)
	}
	return encodingCounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}

func isOpenAIModel(model string) bool {
	prefixes := []string{
		"gpt-",
		"text-embedding",
		"davinci",
		"curie",
		"babbage",
		"ada",
		"code-",
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}
	return false
}
