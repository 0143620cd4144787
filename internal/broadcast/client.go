package broadcast

import (
	"context"
	"time"
)

// SendOptions carries platform-specific send knobs. Clients pick out the
// keys they understand (discord: "username", "avatar_url"; telegram:
// "parse_mode") and ignore the rest.
type SendOptions map[string]any

// Client is the minimal contract a notifier must expose to participate in a
// group. Platform returns a lowercase human-readable tag used only for
// reporting, never for dispatch decisions.
type Client interface {
	Platform() string
	Send(ctx context.Context, text string, opts SendOptions) (any, error)
}

// EmbedSender is an optional capability for platforms with native rich
// message support.
type EmbedSender interface {
	SendEmbed(ctx context.Context, embed Embed) (any, error)
}

// ConnectionTester is an optional capability for platforms that expose a
// cheap reachability probe. Clients without it are probed with a test send.
type ConnectionTester interface {
	TestConnection(ctx context.Context) (bool, error)
}

// Embed is a rich, structured message body. Platforms that cannot render it
// natively receive a plain-text fallback (see Group.BroadcastEmbed).
type Embed struct {
	Title       string
	Description string
	Color       int
	URL         string
	Author      string
	Fields      []EmbedField
	Footer      string
	ImageURL    string
	Timestamp   time.Time
}

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Severity colors used by the Broadcast{Success,Error,Warning,Info} shortcuts.
const (
	ColorSuccess = 0x00ff00
	ColorError   = 0xff0000
	ColorWarning = 0xffff00
	ColorInfo    = 0x0000ff
)
