package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestGenerateContent(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"match_score\": 70}"}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/"}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out, err := c.GenerateContent(context.Background(), "system prompt", "user prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != `{"match_score": 70}` {
		t.Fatalf("unexpected output %q", out)
	}

	if got.Model != DefaultModel || got.MaxTokens != DefaultMaxTokens || got.Temperature != DefaultTemperature {
		t.Fatalf("unexpected request defaults: %+v", got)
	}
	if got.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %q", got.ResponseFormat.Type)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user prompt" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestGenerateContentErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "api error", status: http.StatusTooManyRequests, body: `{"error":{"message":"rate limited"}}`, wantErr: "rate limited"},
		{name: "bad status", status: http.StatusBadGateway, body: `<html>`, wantErr: "status 502"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no choices"},
		{name: "garbage", status: http.StatusOK, body: `nope`, wantErr: "decode"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, err := New(Config{APIKey: "k", BaseURL: srv.URL}, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, err = c.GenerateContent(context.Background(), "s", "p")
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestNewRequiresKey(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatal("expected error without api key")
	}
}
