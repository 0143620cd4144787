package app

import (
	"fmt"

	"hookcast/internal/broadcast"
	"hookcast/internal/config"
	"hookcast/internal/eventbus"
	"hookcast/internal/platform/discord"
	"hookcast/internal/platform/slack"
	"hookcast/internal/platform/telegram"
	"hookcast/internal/platform/webhook"
	"hookcast/pkg/logx"
)

// buildClient constructs one platform client from its config block.
// No network happens here; webhook URL shapes and required fields are
// validated by the platform constructors.
func buildClient(cc config.ClientConfig, log logx.Logger) (broadcast.Client, error) {
	timeout, err := config.ParseDurationField("clients."+cc.Alias+".timeout", cc.Timeout)
	if err != nil {
		return nil, err
	}

	switch cc.Kind {
	case "discord":
		return discord.New(discord.Config{
			WebhookURL: cc.WebhookURL,
			Username:   cc.Username,
			AvatarURL:  cc.AvatarURL,
			Timeout:    timeout,
			RatePerSec: cc.RatePerSec,
		}, log)
	case "slack":
		return slack.New(slack.Config{
			WebhookURL: cc.WebhookURL,
			Timeout:    timeout,
			RatePerSec: cc.RatePerSec,
		}, log)
	case "telegram":
		return telegram.New(telegram.Config{
			Token:      cc.Token,
			ChatID:     cc.ChatID,
			Timeout:    timeout,
			RatePerSec: cc.RatePerSec,
		}, log)
	case "webhook":
		return webhook.New(webhook.Config{
			URL:     cc.URL,
			Headers: cc.Headers,
			Timeout: timeout,
		}, log)
	default:
		return nil, fmt.Errorf("unknown client kind %q", cc.Kind)
	}
}

// buildGroups constructs every configured client once, then assembles the
// groups referencing them. Any constructor failure aborts the whole build so
// a broken config never yields a partially-wired group set.
func buildGroups(cfg *config.Config, bus eventbus.Bus, log logx.Logger) (map[string]*broadcast.Group, error) {
	clients := make(map[string]broadcast.Client, len(cfg.Clients))
	for _, cc := range cfg.Clients {
		c, err := buildClient(cc, log)
		if err != nil {
			return nil, fmt.Errorf("clients.%s: %w", cc.Alias, err)
		}
		clients[cc.Alias] = c
	}

	groups := make(map[string]*broadcast.Group, len(cfg.Groups))
	for name, members := range cfg.Groups {
		g := broadcast.NewGroup(name, broadcast.WithLogger(log), broadcast.WithBus(bus))
		for _, alias := range members {
			if err := g.Add(clients[alias], alias); err != nil {
				return nil, fmt.Errorf("groups.%s: %w", name, err)
			}
		}
		groups[name] = g
	}
	return groups, nil
}
