package telegram

import (
	"errors"
	"strings"
	"testing"

	"hookcast/internal/broadcast"
	"hookcast/pkg/logx"
)

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{Token: "", ChatID: 1}, logx.Nop()); !errors.Is(err, ErrEmptyToken) {
		t.Fatalf("New = %v, want ErrEmptyToken", err)
	}
	if _, err := New(Config{Token: "123:abc", ChatID: 0}, logx.Nop()); !errors.Is(err, ErrNoChatID) {
		t.Fatalf("New = %v, want ErrNoChatID", err)
	}
	c, err := New(Config{Token: "123:abc", ChatID: -100200300}, logx.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Platform() != "telegram" {
		t.Fatalf("platform = %q", c.Platform())
	}
}

func TestCapabilities(t *testing.T) {
	c, _ := New(Config{Token: "123:abc", ChatID: 1}, logx.Nop())
	var anyc any = c
	if _, ok := anyc.(broadcast.EmbedSender); !ok {
		t.Fatalf("telegram client must implement EmbedSender")
	}
	if _, ok := anyc.(broadcast.ConnectionTester); !ok {
		t.Fatalf("telegram client must implement ConnectionTester")
	}
}

func TestRenderHTML(t *testing.T) {
	embed := broadcast.Embed{
		Title:       "Deploy <v2>",
		Description: "a & b",
		Fields:      []broadcast.EmbedField{{Name: "env", Value: "prod"}},
		Footer:      "hookcast",
	}
	got := renderHTML(embed)

	want := "<b>Deploy &lt;v2&gt;</b>\na &amp; b\n\n<b>env</b>: prod\n\n<i>hookcast</i>"
	if got != want {
		t.Fatalf("renderHTML = %q, want %q", got, want)
	}
}

func TestRenderHTMLMinimal(t *testing.T) {
	got := renderHTML(broadcast.Embed{Title: "Alert"})
	if got != "<b>Alert</b>" {
		t.Fatalf("renderHTML = %q", got)
	}
	if strings.Contains(got, "\n") {
		t.Fatalf("trailing newline not trimmed: %q", got)
	}
}
