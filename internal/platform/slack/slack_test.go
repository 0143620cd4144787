package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hookcast/internal/broadcast"
	"hookcast/pkg/logx"
)

func TestNewValidatesWebhookURL(t *testing.T) {
	if _, err := New(Config{WebhookURL: "https://hooks.slack.com/services/T0ABC123/B0DEF456/xyzXYZ123"}, logx.Nop()); err != nil {
		t.Fatalf("New valid = %v", err)
	}

	invalid := []string{
		"",
		"https://hooks.slack.com/services/T0ABC123",
		"https://slack.com/services/T0ABC123/B0DEF456/xyz",
		"http://hooks.slack.com/services/T0ABC123/B0DEF456/xyz",
	}
	for _, u := range invalid {
		if _, err := New(Config{WebhookURL: u}, logx.Nop()); !errors.Is(err, ErrInvalidWebhookURL) {
			t.Fatalf("New(%q) = %v, want ErrInvalidWebhookURL", u, err)
		}
	}
}

func testClient(url string) *Client {
	return &Client{
		cfg:  Config{WebhookURL: url},
		http: &http.Client{Timeout: 2 * time.Second},
		log:  logx.Nop(),
	}
}

func TestSendPayload(t *testing.T) {
	var got webhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).Send(context.Background(), "hello", nil); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got.Text != "hello" || len(got.Attachments) != 0 {
		t.Fatalf("payload = %+v", got)
	}
}

func TestSendEmbedMapsToAttachment(t *testing.T) {
	var got webhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	embed := broadcast.Embed{
		Title:       "Deploy",
		Description: "ok",
		Color:       broadcast.ColorError,
		Fields:      []broadcast.EmbedField{{Name: "env", Value: "prod", Inline: true}},
		Footer:      "hookcast",
	}
	if _, err := testClient(srv.URL).SendEmbed(context.Background(), embed); err != nil {
		t.Fatalf("SendEmbed: %v", err)
	}

	if len(got.Attachments) != 1 {
		t.Fatalf("attachments = %d, want 1", len(got.Attachments))
	}
	a := got.Attachments[0]
	if a.Color != "#ff0000" {
		t.Fatalf("color = %q, want #ff0000", a.Color)
	}
	if a.Title != "Deploy" || a.Text != "ok" || a.Footer != "hookcast" {
		t.Fatalf("attachment = %+v", a)
	}
	if len(a.Fields) != 1 || a.Fields[0].Title != "env" || !a.Fields[0].Short {
		t.Fatalf("fields = %+v", a.Fields)
	}
}

func TestSendErrorToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Send(context.Background(), "hi", nil)
	if err == nil || !strings.Contains(err.Error(), "invalid_payload") {
		t.Fatalf("err = %v, want slack error token", err)
	}
}

// The slack client must not declare a probe capability; reachability is
// checked by the group's test-send fallback.
func TestNoConnectionTester(t *testing.T) {
	var c any = testClient("https://hooks.slack.com/services/T1/B1/x")
	if _, ok := c.(broadcast.ConnectionTester); ok {
		t.Fatalf("slack client unexpectedly implements ConnectionTester")
	}
	if _, ok := c.(broadcast.EmbedSender); !ok {
		t.Fatalf("slack client must implement EmbedSender")
	}
}
