// Package config loads and watches the hookcast config file (YAML or JSON).
package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Logging LoggingConfig `json:"logging"`

	// Clients declares every platform client once; groups reference them by
	// alias.
	Clients []ClientConfig `json:"clients"`

	// Groups maps a broadcast group name to the client aliases it contains.
	Groups map[string][]string `json:"groups"`

	// Probe controls the daemon's scheduled connectivity checks.
	Probe *ProbeConfig `json:"probe,omitempty"`
}

type LoggingConfig struct {
	Level   string     `json:"level,omitempty"`
	Console bool       `json:"console"`
	File    FileConfig `json:"file,omitempty"`
}

type FileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// ClientConfig is one typed client block. Kind selects the platform package;
// the remaining fields are kind-specific (webhook_url for discord/slack,
// token+chat_id for telegram, url for the generic webhook).
type ClientConfig struct {
	Kind  string `json:"kind"`
	Alias string `json:"alias"`

	WebhookURL string            `json:"webhook_url,omitempty"`
	Token      string            `json:"token,omitempty"`
	ChatID     int64             `json:"chat_id,omitempty"`
	URL        string            `json:"url,omitempty"`
	Username   string            `json:"username,omitempty"`
	AvatarURL  string            `json:"avatar_url,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`

	// Timeout is a Go duration string (e.g. "10s").
	Timeout    string `json:"timeout,omitempty"`
	RatePerSec int    `json:"rate_per_sec,omitempty"`
}

// ProbeConfig schedules TestConnections over all groups.
// Schedule accepts a cron expression ("*/5 * * * *", "@hourly") or an
// "@every 90s" interval.
type ProbeConfig struct {
	Enabled  bool   `json:"enabled"`
	Schedule string `json:"schedule,omitempty"`
}

const DefaultProbeSchedule = "@every 5m"

var knownKinds = map[string]bool{
	"discord":  true,
	"slack":    true,
	"telegram": true,
	"webhook":  true,
}

// Validate checks structural consistency: known kinds, unique non-empty
// aliases, kind-specific required fields present, group members resolvable.
// Deep validation (webhook URL shapes, tokens) belongs to the platform
// constructors.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Clients))
	for i, cc := range c.Clients {
		where := fmt.Sprintf("clients[%d]", i)
		alias := strings.TrimSpace(cc.Alias)
		if alias == "" {
			return fmt.Errorf("%s: alias is required", where)
		}
		if seen[alias] {
			return fmt.Errorf("%s: duplicate alias %q", where, alias)
		}
		seen[alias] = true

		if !knownKinds[cc.Kind] {
			return fmt.Errorf("%s: unknown kind %q", where, cc.Kind)
		}
		switch cc.Kind {
		case "discord", "slack":
			if strings.TrimSpace(cc.WebhookURL) == "" {
				return fmt.Errorf("%s: webhook_url is required for kind %q", where, cc.Kind)
			}
		case "telegram":
			if strings.TrimSpace(cc.Token) == "" || cc.ChatID == 0 {
				return fmt.Errorf("%s: token and chat_id are required for kind telegram", where)
			}
		case "webhook":
			if strings.TrimSpace(cc.URL) == "" {
				return fmt.Errorf("%s: url is required for kind webhook", where)
			}
		}
		if _, err := ParseDurationField(where+".timeout", cc.Timeout); err != nil {
			return err
		}
	}

	for name, members := range c.Groups {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("groups: empty group name")
		}
		if len(members) == 0 {
			return fmt.Errorf("groups.%s: at least one member alias is required", name)
		}
		for _, alias := range members {
			if !seen[alias] {
				return fmt.Errorf("groups.%s: unknown client alias %q", name, alias)
			}
		}
	}
	return nil
}
