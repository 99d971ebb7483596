package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"whisperxsubs/internal/services"
)

func completionServer(t *testing.T, handler func(calls int, req chatCompletionRequest) (int, any)) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		status, payload := handler(calls, req)
		if status != 0 {
			w.WriteHeader(status)
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func messagePayload(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"finish_reason": "stop",
				"message":       map[string]any{"content": content},
			},
		},
	}
}

func noSleep(time.Duration) {}

func TestClientTranslate(t *testing.T) {
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "demo-model" {
			t.Errorf("model = %q", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[1].Content != "Hello world" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		if !strings.Contains(req.Messages[0].Content, "French (fr)") || !strings.Contains(req.Messages[0].Content, "English (en)") {
			t.Errorf("system prompt missing languages: %q", req.Messages[0].Content)
		}
		if req.ResponseFormat["type"] != "json_object" {
			t.Errorf("response format = %v", req.ResponseFormat)
		}
		_ = json.NewEncoder(w).Encode(messagePayload(`{"translation":" Bonjour le monde "}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model", Referer: "https://example.test", Title: "subs"})
	got, err := client.Translate(context.Background(), " Hello world ", "en", "fr")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != "Bonjour le monde" {
		t.Fatalf("translation = %q", got)
	}
	if gotHeaders.Get("Authorization") != "Bearer test" {
		t.Fatalf("authorization header = %q", gotHeaders.Get("Authorization"))
	}
	if gotHeaders.Get("HTTP-Referer") != "https://example.test" || gotHeaders.Get("X-Title") != "subs" {
		t.Fatalf("attribution headers missing: %v", gotHeaders)
	}
}

func TestClientTranslateBlankTextSkipsRequest(t *testing.T) {
	server, calls := completionServer(t, func(int, chatCompletionRequest) (int, any) {
		return 0, messagePayload(`{"translation":"x"}`)
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	got, err := client.Translate(context.Background(), "   ", "en", "fr")
	if err != nil || got != "" {
		t.Fatalf("expected empty result without error, got %q, %v", got, err)
	}
	if *calls != 0 {
		t.Fatalf("expected no requests, got %d", *calls)
	}
}

func TestClientTranslateCodeFence(t *testing.T) {
	server, _ := completionServer(t, func(int, chatCompletionRequest) (int, any) {
		return 0, messagePayload("Sure!\n```json\n{\"translation\":\"こんにちは\"}\n```")
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	got, err := client.Translate(context.Background(), "Hello", "en", "ja")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != "こんにちは" {
		t.Fatalf("translation = %q", got)
	}
}

func TestClientTranslateToolCallArguments(t *testing.T) {
	server, _ := completionServer(t, func(int, chatCompletionRequest) (int, any) {
		return 0, map[string]any{
			"choices": []any{
				map[string]any{
					"message": map[string]any{
						"content": "",
						"tool_calls": []any{
							map[string]any{"function": map[string]any{"arguments": `{"translation":"Hola"}`}},
						},
					},
				},
			},
		}
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	got, err := client.Translate(context.Background(), "Hello", "en", "es")
	if err != nil || got != "Hola" {
		t.Fatalf("Translate = %q, %v", got, err)
	}
}

func TestClientTranslateEmptyTranslationFails(t *testing.T) {
	server, _ := completionServer(t, func(int, chatCompletionRequest) (int, any) {
		return 0, messagePayload(`{"translation":""}`)
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL})
	if _, err := client.Translate(context.Background(), "Hello", "en", "fr"); err == nil {
		t.Fatal("expected error for empty translation")
	}
}

func TestClientRequiresAPIKey(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.Translate(context.Background(), "Hello", "en", "fr"); err == nil {
		t.Fatal("expected missing api key error")
	}
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected missing api key error")
	}
}

func TestClientHealthCheck(t *testing.T) {
	server, _ := completionServer(t, func(int, chatCompletionRequest) (int, any) {
		return 0, messagePayload("```json\n{\"ok\":true}\n```")
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestClientHealthCheckUnauthorizedIsNotRetried(t *testing.T) {
	server, calls := completionServer(t, func(int, chatCompletionRequest) (int, any) {
		return http.StatusUnauthorized, map[string]string{"error": "unauthorized"}
	})
	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL}, WithSleeper(noSleep))
	err := client.HealthCheck(context.Background())
	if err == nil {
		t.Fatal("expected health check to fail")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if *calls != 1 {
		t.Fatalf("expected a single attempt, got %d", *calls)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func() http.HandlerFunc {
		calls := 0
		return func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limited"})
				return
			}
			_ = json.NewEncoder(w).Encode(messagePayload(`{"translation":"Salut"}`))
		}
	}()))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryPolicy(RetryPolicy{Attempts: 5, MaxDelay: 10 * time.Second}),
	)
	got, err := client.Translate(context.Background(), "Hi", "en", "fr")
	if err != nil {
		t.Fatalf("Translate returned error: %v", err)
	}
	if got != "Salut" {
		t.Fatalf("translation = %q", got)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientRetriesOnEmptyContentThenSucceeds(t *testing.T) {
	server, calls := completionServer(t, func(call int, _ chatCompletionRequest) (int, any) {
		if call < 3 {
			return 0, messagePayload("")
		}
		return 0, messagePayload(`{"translation":"Hallo"}`)
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL}, WithSleeper(noSleep))
	got, err := client.Translate(context.Background(), "Hello", "en", "de")
	if err != nil || got != "Hallo" {
		t.Fatalf("Translate = %q, %v", got, err)
	}
	if *calls != 3 {
		t.Fatalf("expected 3 calls, got %d", *calls)
	}
}

func TestClientExhaustedRetriesAreTransient(t *testing.T) {
	server, calls := completionServer(t, func(int, chatCompletionRequest) (int, any) {
		return http.StatusBadGateway, map[string]string{"error": "upstream"}
	})
	client := NewClient(Config{APIKey: "test", BaseURL: server.URL},
		WithSleeper(noSleep),
		WithRetryPolicy(RetryPolicy{Attempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}),
	)
	_, err := client.Translate(context.Background(), "Hello", "en", "fr")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Fatalf("unexpected error text %q", err)
	}
	if *calls != 3 {
		t.Fatalf("expected 3 calls, got %d", *calls)
	}
}

func TestRetryPolicyBackoff(t *testing.T) {
	policy := DefaultRetryPolicy()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 10 * time.Second, 10 * time.Second}
	for i, expected := range want {
		if got := policy.Backoff(i + 1); got != expected {
			t.Fatalf("Backoff(%d) = %s, want %s", i+1, got, expected)
		}
	}
	if (RetryPolicy{}).Backoff(3) != 0 {
		t.Fatal("expected zero base delay to disable backoff")
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"plain", `{"translation":"a"}`, "a", false},
		{"fenced", "```json\n{\"translation\":\"b\"}\n```", "b", false},
		{"prose", `Here you go: {"translation":"c"} enjoy`, "c", false},
		{"empty", "  ", "", true},
		{"garbage", "no json here", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				Translation string `json:"translation"`
			}
			err := DecodeLLMJSON(tt.content, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if out.Translation != tt.want {
				t.Fatalf("translation = %q, want %q", out.Translation, tt.want)
			}
		})
	}
}
