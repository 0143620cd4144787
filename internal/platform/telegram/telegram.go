// Package telegram implements a bot-API client that posts notifications to a
// fixed chat.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"hookcast/internal/broadcast"
	"hookcast/pkg/logx"
)

var (
	ErrEmptyToken = errors.New("telegram token is empty")
	ErrNoChatID   = errors.New("telegram chat_id is required")
)

type Config struct {
	Token  string
	ChatID int64

	Timeout    time.Duration
	RatePerSec int
}

type Client struct {
	cfg     Config
	bot     *tele.Bot
	log     logx.Logger
	limiter *rate.Limiter
}

// New builds the client offline; no network happens until the first send or
// probe.
func New(cfg Config, log logx.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, ErrEmptyToken
	}
	if cfg.ChatID == 0 {
		return nil, ErrNoChatID
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		Offline: true,
		Client:  &http.Client{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}
	c := &Client{
		cfg: cfg,
		bot: b,
		log: log.With(logx.String("platform", "telegram")),
	}
	if cfg.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	return c, nil
}

func (c *Client) Platform() string { return "telegram" }

// Receipt is the opaque per-send response recorded in broadcast results.
type Receipt struct {
	MessageID int `json:"message_id"`
}

func (c *Client) Send(ctx context.Context, text string, opts broadcast.SendOptions) (any, error) {
	sendOpt := &tele.SendOptions{DisableWebPagePreview: true}
	if v, ok := opts["parse_mode"].(string); ok {
		sendOpt.ParseMode = v
	}
	return c.send(ctx, text, sendOpt)
}

// SendEmbed renders the embed as an HTML-formatted message; Telegram has no
// native embed object.
func (c *Client) SendEmbed(ctx context.Context, embed broadcast.Embed) (any, error) {
	return c.send(ctx, renderHTML(embed), &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		DisableWebPagePreview: true,
	})
}

func renderHTML(embed broadcast.Embed) string {
	var b strings.Builder
	if embed.Title != "" {
		fmt.Fprintf(&b, "<b>%s</b>\n", html.EscapeString(embed.Title))
	}
	if embed.Description != "" {
		b.WriteString(html.EscapeString(embed.Description))
		b.WriteString("\n")
	}
	for _, f := range embed.Fields {
		fmt.Fprintf(&b, "\n<b>%s</b>: %s", html.EscapeString(f.Name), html.EscapeString(f.Value))
	}
	if embed.Footer != "" {
		fmt.Fprintf(&b, "\n\n<i>%s</i>", html.EscapeString(embed.Footer))
	}
	return strings.TrimRight(b.String(), "\n")
}

// TestConnection performs a getMe round-trip.
func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return false, err
		}
	}
	if _, err := c.bot.Raw("getMe", nil); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) send(ctx context.Context, text string, opt *tele.SendOptions) (any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	msg, err := c.bot.Send(&tele.Chat{ID: c.cfg.ChatID}, text, opt)
	if err != nil {
		return nil, err
	}
	c.log.Debug("message delivered", logx.Int("message_id", msg.ID))
	return Receipt{MessageID: msg.ID}, nil
}
