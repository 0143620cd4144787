package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"hookcast/internal/broadcast"
	"hookcast/pkg/logx"
)

func TestNewValidatesURL(t *testing.T) {
	if _, err := New(Config{URL: "https://example.com/hook"}, logx.Nop()); err != nil {
		t.Fatalf("New valid = %v", err)
	}
	for _, u := range []string{"", "not a url", "ftp://example.com/x", "/relative"} {
		if _, err := New(Config{URL: u}, logx.Nop()); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("New(%q) = %v, want ErrInvalidURL", u, err)
		}
	}
}

func TestSendPostsJSONWithHeaders(t *testing.T) {
	var got map[string]string
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	c, err := New(Config{URL: srv.URL, Headers: map[string]string{"Authorization": "Bearer tok"}}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Send(context.Background(), "ping", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["text"] != "ping" {
		t.Fatalf("payload = %v", got)
	}
	if auth != "Bearer tok" {
		t.Fatalf("auth header = %q", auth)
	}
}

func TestSendNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := New(Config{URL: srv.URL}, logx.Nop())
	if _, err := c.Send(context.Background(), "hi", nil); err == nil {
		t.Fatalf("Send succeeded against 502")
	}
}

// Base capability only: the generic client relies on the group's fallbacks.
func TestCapabilities(t *testing.T) {
	c, _ := New(Config{URL: "https://example.com/hook"}, logx.Nop())
	var anyc any = c
	if _, ok := anyc.(broadcast.EmbedSender); ok {
		t.Fatalf("generic client unexpectedly implements EmbedSender")
	}
	if _, ok := anyc.(broadcast.ConnectionTester); ok {
		t.Fatalf("generic client unexpectedly implements ConnectionTester")
	}
}
