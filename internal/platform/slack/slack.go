// Package slack implements a Slack incoming-webhook client.
//
// Slack webhooks accept no read operations, so the client exposes no
// connection probe; groups fall back to a test send.
package slack

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

var webhookRe = regexp.MustCompile(`^https://hooks\.slack\.com/services/T[A-Z0-9]+/B[A-Z0-9]+/[A-Za-z0-9]+$`)

var ErrInvalidWebhookURL = errors.New("invalid slack webhook url")

type Config struct {
	WebhookURL string
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
		log:  log.With(logx.String("platform", "slack")),
	}
	if cfg.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	}
	return c, nil
}

func (c *Client) Platform() string { return "slack" }

type Receipt struct {
	Status int `json:"status"`
}

type webhookMessage struct {
	Text        string       `json:"text,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
}

// attachment is Slack's legacy rich-message shape; it is the closest native
// mapping for an embed (color bar, title, fields, footer).
type attachment struct {
	Color      string            `json:"color,omitempty"`
	Title      string            `json:"title,omitempty"`
	TitleLink  string            `json:"title_link,omitempty"`
	AuthorName string            `json:"author_name,omitempty"`
	Text       string            `json:"text,omitempty"`
	Fields     []attachmentField `json:"fields,omitempty"`
	Footer     string            `json:"footer,omitempty"`
	ImageURL   string            `json:"image_url,omitempty"`
	Ts         int64             `json:"ts,omitempty"`
}

type attachmentField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short,omitempty"`
}

func (c *Client) Send(ctx context.Context, text string, opts broadcast.SendOptions) (any, error) {
	return c.post(ctx, webhookMessage{Text: text})
}

func (c *Client) SendEmbed(ctx context.Context, embed broadcast.Embed) (any, error) {
	a := attachment{
		Title:      embed.Title,
		TitleLink:  embed.URL,
		AuthorName: embed.Author,
		Text:       embed.Description,
		Footer:     embed.Footer,
		ImageURL:   embed.ImageURL,
	}
	if embed.Color != 0 {
		a.Color = fmt.Sprintf("#%06x", embed.Color)
	}
	for _, f := range embed.Fields {
		a.Fields = append(a.Fields, attachmentField{Title: f.Name, Value: f.Value, Short: f.Inline})
	}
	if !embed.Timestamp.IsZero() {
		a.Ts = embed.Timestamp.Unix()
	}
	return c.post(ctx, webhookMessage{Attachments: []attachment{a}})
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

	// Slack answers a webhook post with 200 and a literal "ok" body; any other
	// status carries a short error token ("invalid_payload", "no_service", ...).
	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("slack webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.log.Debug("webhook delivered", logx.Int("status", resp.StatusCode))
	return Receipt{Status: resp.StatusCode}, nil
}
