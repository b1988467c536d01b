package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/founderport/angel/internal/interview"
)

func completionBody(content string) string {
	return `{"id":"chatcmpl-1","choices":[{"index":0,"message":{"role":"assistant","content":` +
		mustJSON(content) + `},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":20,"total_tokens":30}}`
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestClientGenerate(t *testing.T) {
	t.Parallel()

	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody("[[Q:KYC.02]] What's your name?")))
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	got, err := c.Generate(context.Background(),
		[]string{"You are Angel.", "Tag every question."},
		[]interview.Turn{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "[[Q:KYC.01]] Welcome!"},
		},
		"I'm Maria")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "[[Q:KYC.02]] What's your name?" {
		t.Errorf("Generate() = %q", got)
	}

	if len(captured.Messages) != 4 {
		t.Fatalf("sent %d messages, want 4", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || !strings.Contains(captured.Messages[0].Content, "Tag every question.") {
		t.Errorf("system message not joined: %+v", captured.Messages[0])
	}
	if captured.Messages[3].Role != "user" || captured.Messages[3].Content != "I'm Maria" {
		t.Errorf("trailing user message = %+v", captured.Messages[3])
	}
}

func TestClientRateLimited(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	_, err := c.Generate(context.Background(), nil, nil, "hello")
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("error = %v, want ErrRateLimited", err)
	}
}

func TestClientAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer srv.Close()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	if _, err := c.Generate(context.Background(), nil, nil, "hello"); err == nil {
		t.Fatal("expected error on 500")
	}
}

func TestClientContextCancel(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient("sk-test", WithBaseURL(srv.URL))
	if _, err := c.Generate(ctx, nil, nil, "hello"); err == nil {
		t.Fatal("expected error on canceled context")
	}
}
