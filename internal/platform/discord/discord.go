// Package discord implements a Discord incoming-webhook client.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hookcast/internal/broadcast"
	"hookcast/pkg/logx"
)

var webhookRe = regexp.MustCompile(`^https://(?:discord|discordapp)\.com/api/webhooks/\d+/[\w-]+$`)

var ErrInvalidWebhookURL = errors.New("invalid discord webhook url")

// Discord caps plain message content at 2000 characters.
const maxContentLen = 2000

type Config struct {
	WebhookURL string
	// Username/AvatarURL override the webhook's defaults for every send.
	Username  string
	AvatarURL string

	Timeout    time.Duration
	RatePerSec int
}

type Client struct {
	cfg     Config
	http    *http.Client
	log     logx.Logger
	limiter *rate.Limiter
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	url := strings.TrimSpace(cfg.WebhookURL)
	if !webhookRe.MatchString(url) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidWebhookURL, cfg.WebhookURL)
	}
	cfg.WebhookURL = url

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log.With(logx.String("platform", "discord")),
	}
	if cfg.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	return c, nil
}

func (c *Client) Platform() string { return "discord" }

// Receipt is the opaque per-send response recorded in broadcast results.
type Receipt struct {
	Status int `json:"status"`
}

// webhookMessage is the execute-webhook payload.
type webhookMessage struct {
	Content   string         `json:"content,omitempty"`
	Username  string         `json:"username,omitempty"`
	AvatarURL string         `json:"avatar_url,omitempty"`
	Embeds    []embedPayload `json:"embeds,omitempty"`
}

type embedPayload struct {
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	Color       int            `json:"color,omitempty"`
	Author      *embedAuthor   `json:"author,omitempty"`
	Fields      []embedField   `json:"fields,omitempty"`
	Footer      *embedFooter   `json:"footer,omitempty"`
	Image       *embedImageRef `json:"image,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type embedAuthor struct {
	Name string `json:"name"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type embedFooter struct {
	Text string `json:"text"`
}

type embedImageRef struct {
	URL string `json:"url"`
}

func (c *Client) Send(ctx context.Context, text string, opts broadcast.SendOptions) (any, error) {
	if len(text) > maxContentLen {
		text = text[:maxContentLen]
	}
	msg := webhookMessage{
		Content:   text,
		Username:  c.cfg.Username,
		AvatarURL: c.cfg.AvatarURL,
	}
	if v, ok := opts["username"].(string); ok && v != "" {
		msg.Username = v
	}
	if v, ok := opts["avatar_url"].(string); ok && v != "" {
		msg.AvatarURL = v
	}
	return c.post(ctx, msg)
}

func (c *Client) SendEmbed(ctx context.Context, embed broadcast.Embed) (any, error) {
	p := embedPayload{
		Title:       embed.Title,
		Description: embed.Description,
		URL:         embed.URL,
		Color:       embed.Color,
	}
	if embed.Author != "" {
		p.Author = &embedAuthor{Name: embed.Author}
	}
	for _, f := range embed.Fields {
		p.Fields = append(p.Fields, embedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	if embed.Footer != "" {
		p.Footer = &embedFooter{Text: embed.Footer}
	}
	if embed.ImageURL != "" {
		p.Image = &embedImageRef{URL: embed.ImageURL}
	}
	if !embed.Timestamp.IsZero() {
		p.Timestamp = embed.Timestamp.UTC().Format(time.RFC3339)
	}

	msg := webhookMessage{
		Username:  c.cfg.Username,
		AvatarURL: c.cfg.AvatarURL,
		Embeds:    []embedPayload{p},
	}
	return c.post(ctx, msg)
}

// TestConnection fetches the webhook object; Discord answers GETs on webhook
// URLs without requiring auth.
func (c *Client) TestConnection(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.WebhookURL, http.NoBody)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK, nil
}

func (c *Client) post(ctx context.Context, msg webhookMessage) (any, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("discord webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.log.Debug("webhook delivered", logx.Int("status", resp.StatusCode))
	return Receipt{Status: resp.StatusCode}, nil
}
