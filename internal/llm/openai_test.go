package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/maraichr/gdcgraph/internal/config"
)

func TestOpenAIClient_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer k" {
			t.Errorf("Authorization = %q", auth)
		}
		var req chatRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "m" || len(req.Messages) != 2 || req.Temperature != 0 {
			t.Errorf("request = %+v", req)
		}
		io.WriteString(w, `{"choices":[{"message":{"content":"  MATCH (n) RETURN n  "}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "m", srv.URL+"/v1/")
	got, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "schema"},
		{Role: RoleUser, Content: "question"},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if got != "MATCH (n) RETURN n" {
		t.Errorf("got %q", got)
	}
}

func TestOpenAIClient_RetriesRateLimit(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "", srv.URL)
	c.backoff = time.Millisecond
	got, err := c.Complete(context.Background(), []Message{{Role: RoleUser, Content: "q"}})
	if err != nil || got != "ok" {
		t.Fatalf("Complete = %q, %v", got, err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestOpenAIClient_NoRetryOnBadRequest(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewOpenAIClient("k", "", srv.URL)
	c.backoff = time.Millisecond
	if _, err := c.Complete(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestNew_SelectsProvider(t *testing.T) {
	c, err := New(context.Background(), config.LLMConfig{APIKey: "k"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*OpenAIClient); !ok {
		t.Errorf("got %T, want *OpenAIClient", c)
	}

	c, err = New(context.Background(), config.LLMConfig{})
	if err != nil || c != nil {
		t.Errorf("no provider configured: got %v, %v", c, err)
	}
}
