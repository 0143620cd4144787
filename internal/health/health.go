// Package health runs scheduled connectivity probes over broadcast groups.
package health

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"

	"hookcast/internal/broadcast"
	"hookcast/pkg/logx"
)

type Config struct {
	Enabled bool
	// Schedule is a cron expression ("*/5 * * * *", "@hourly") or an
	// "@every 90s" interval.
	Schedule string
}

// Service probes every group on a cron schedule and logs the outcome. Probe
// results are also surfaced on each group's event bus (probe.failed).
type Service struct {
	mu sync.Mutex

	cfg    Config
	log    logx.Logger
	groups func() []*broadcast.Group

	parser cron.Parser
	c      *cron.Cron
}

// New creates the prober. groups is called on every tick so hot-reloaded
// group sets are picked up without restarting the service.
func New(cfg Config, groups func() []*broadcast.Group, log logx.Logger) *Service {
	return &Service{
		cfg:    cfg,
		log:    log,
		groups: groups,
		parser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

// ValidateSchedule reports whether the schedule string parses.
func (s *Service) ValidateSchedule(schedule string) error {
	if _, err := s.parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}
	return nil
}

func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.cfg.Enabled || s.c != nil {
		return nil
	}
	schedule := s.cfg.Schedule
	if schedule == "" {
		schedule = "@every 5m"
	}

	c := cron.New(cron.WithParser(s.parser))
	_, err := c.AddFunc(schedule, func() { s.runOnce(ctx) })
	if err != nil {
		return fmt.Errorf("invalid probe schedule %q: %w", schedule, err)
	}
	c.Start()
	s.c = c
	s.log.Info("connectivity probes scheduled", logx.String("schedule", schedule))
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	c := s.c
	s.c = nil
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
		s.log.Info("connectivity probes stopped")
	}
}

func (s *Service) runOnce(ctx context.Context) {
	for _, g := range s.groups() {
		res := g.TestConnections(ctx)
		down := 0
		for _, r := range res {
			if !r.Connected {
				down++
			}
		}
		if down > 0 {
			s.log.Warn("probe tick finished",
				logx.String("group", g.Name()),
				logx.Int("clients", len(res)),
				logx.Int("down", down))
		} else {
			s.log.Debug("probe tick finished",
				logx.String("group", g.Name()),
				logx.Int("clients", len(res)))
		}
	}
}
