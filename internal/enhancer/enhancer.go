// Package enhancer optionally rewrites the engine's drafted reply text
// through an external text service. Enhancement is cosmetic: the rewriter may
// only change wording, never the resolved intent or the action taken, and any
// failure falls back to the draft.
package enhancer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Request carries one draft reply to rewrite.
type Request struct {
	SessionID string `json:"session_id"`
	Intent    string `json:"intent"`
	Sentiment string `json:"sentiment,omitempty"`
	Text      string `json:"text"`
}

// Rewriter produces an alternative wording for a draft reply. An empty result
// means "keep the draft".
type Rewriter interface {
	Rewrite(ctx context.Context, req Request) (string, error)
}

// Config controls rewriter construction.
type Config struct {
	Mode string // auto, http, mock
	URL  string
}

// NewRewriter resolves the configured mode. Auto picks http when a URL is
// configured and falls back to mock otherwise.
func NewRewriter(cfg Config) (Rewriter, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.URL) != "" {
			return NewHTTPRewriter(cfg.URL), nil
		}
		return NewMockRewriter(), nil
	case "http":
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, errors.New("enhancer http mode requires a url")
		}
		return NewHTTPRewriter(cfg.URL), nil
	case "mock":
		return NewMockRewriter(), nil
	default:
		return nil, fmt.Errorf("unsupported enhancer mode %q", cfg.Mode)
	}
}

// MockRewriter keeps drafts as they are. It stands in when no enhancement
// backend is configured.
type MockRewriter struct{}

func NewMockRewriter() *MockRewriter { return &MockRewriter{} }

func (m *MockRewriter) Rewrite(ctx context.Context, _ Request) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return "", nil
}
