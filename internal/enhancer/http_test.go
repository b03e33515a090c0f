package enhancer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestRewriter(url string) *HTTPRewriter {
	r := NewHTTPRewriter(url)
	r.backoffBase = time.Millisecond
	r.backoffCap = 2 * time.Millisecond
	return r
}

func TestHTTPRewriterExtractsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Intent != "greeting" {
			t.Errorf("Intent = %q, want greeting", req.Intent)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"enhanced_text": "Hello! Ready when you are."}`))
	}))
	defer srv.Close()

	got, err := newTestRewriter(srv.URL).Rewrite(context.Background(), Request{
		SessionID: "s1",
		Intent:    "greeting",
		Text:      "Hi there!",
	})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "Hello! Ready when you are." {
		t.Fatalf("Rewrite() = %q", got)
	}
}

func TestHTTPRewriterAcceptsBareStringBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("  polished wording  "))
	}))
	defer srv.Close()

	got, err := newTestRewriter(srv.URL).Rewrite(context.Background(), Request{Text: "draft"})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "polished wording" {
		t.Fatalf("Rewrite() = %q", got)
	}
}

func TestHTTPRewriterRetriesTransientStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"text": "third time lucky"}`))
	}))
	defer srv.Close()

	got, err := newTestRewriter(srv.URL).Rewrite(context.Background(), Request{Text: "draft"})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "third time lucky" || calls != 3 {
		t.Fatalf("Rewrite() = %q after %d calls", got, calls)
	}
}

func TestHTTPRewriterDoesNotRetryClientError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := newTestRewriter(srv.URL).Rewrite(context.Background(), Request{Text: "draft"}); err == nil {
		t.Fatalf("Rewrite() error = nil, want status error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestNewRewriterModes(t *testing.T) {
	if r, err := NewRewriter(Config{Mode: "auto"}); err != nil {
		t.Fatalf("NewRewriter(auto) error = %v", err)
	} else if _, ok := r.(*MockRewriter); !ok {
		t.Fatalf("auto without url = %T, want MockRewriter", r)
	}

	if r, err := NewRewriter(Config{Mode: "auto", URL: "http://localhost:9"}); err != nil {
		t.Fatalf("NewRewriter(auto+url) error = %v", err)
	} else if _, ok := r.(*HTTPRewriter); !ok {
		t.Fatalf("auto with url = %T, want HTTPRewriter", r)
	}

	if _, err := NewRewriter(Config{Mode: "http"}); err == nil {
		t.Fatalf("http mode without url should fail")
	}
	if _, err := NewRewriter(Config{Mode: "telepathy"}); err == nil {
		t.Fatalf("unknown mode should fail")
	}
}

func TestMockRewriterKeepsDraft(t *testing.T) {
	got, err := NewMockRewriter().Rewrite(context.Background(), Request{Text: "draft"})
	if err != nil {
		t.Fatalf("Rewrite() error = %v", err)
	}
	if got != "" {
		t.Fatalf("Rewrite() = %q, want empty (keep draft)", got)
	}
}
