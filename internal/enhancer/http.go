package enhancer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/salespilot-ai/salespilot/internal/reliability"
)

// HTTPRewriter forwards drafts to an enhancement HTTP endpoint.
type HTTPRewriter struct {
	url    string
	client *http.Client

	attempts    int
	backoffBase time.Duration
	backoffCap  time.Duration
}

func NewHTTPRewriter(url string) *HTTPRewriter {
	return &HTTPRewriter{
		url: strings.TrimSpace(url),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		attempts:    3,
		backoffBase: 200 * time.Millisecond,
		backoffCap:  2 * time.Second,
	}
}

func (r *HTTPRewriter) Rewrite(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var text string
	err = reliability.Retry(ctx, r.attempts, r.backoffBase, r.backoffCap, func() (bool, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
		if err != nil {
			return false, fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		res, err := r.client.Do(httpReq)
		if err != nil {
			return true, fmt.Errorf("send request: %w", err)
		}
		defer res.Body.Close()

		if res.StatusCode < 200 || res.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
			return reliability.IsRetryableHTTPStatus(res.StatusCode),
				fmt.Errorf("enhancer http status %d: %s", res.StatusCode, string(body))
		}

		body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
		if err != nil {
			return true, fmt.Errorf("read response: %w", err)
		}
		text = extractText(body)
		return false, nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

// extractText digs the rewritten wording out of whatever shape the endpoint
// returned: the first populated well-known field wins, a bare string body is
// taken verbatim.
func extractText(body []byte) string {
	if !gjson.ValidBytes(body) {
		return strings.TrimSpace(string(body))
	}
	parsed := gjson.ParseBytes(body)
	if parsed.Type == gjson.String {
		return strings.TrimSpace(parsed.String())
	}
	for _, key := range []string{"text", "enhanced_text", "output", "message"} {
		if v := parsed.Get(key); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}
