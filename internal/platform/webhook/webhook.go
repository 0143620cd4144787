// Package webhook implements a generic JSON-POST client for platforms not
// covered by a dedicated package. It exposes only the base send capability,
// so groups degrade embeds to plain text and probe it with a test send.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"hookcast/internal/broadcast"
	"hookcast/pkg/logx"
)

var ErrInvalidURL = errors.New("invalid webhook url")

type Config struct {
	URL string
	// Headers are added to every request (e.g. an Authorization header).
	Headers map[string]string
	Timeout time.Duration
}

type Client struct {
	cfg  Config
	http *http.Client
	log  logx.Logger
}

func New(cfg Config, log logx.Logger) (*Client, error) {
	raw := strings.TrimSpace(cfg.URL)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, cfg.URL)
	}
	cfg.URL = raw

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log.With(logx.String("platform", "webhook")),
	}, nil
}

func (c *Client) Platform() string { return "webhook" }

type Receipt struct {
	Status int `json:"status"`
}

func (c *Client) Send(ctx context.Context, text string, opts broadcast.SendOptions) (any, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	c.log.Debug("webhook delivered", logx.Int("status", resp.StatusCode))
	return Receipt{Status: resp.StatusCode}, nil
}
