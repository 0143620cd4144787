// Package app wires config, logging, platform clients, broadcast groups, and
// the probe scheduler into one lifecycle.
package app

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hookcast/internal/broadcast"
	"hookcast/internal/config"
	"hookcast/internal/eventbus"
	"hookcast/internal/health"
	"hookcast/pkg/logx"
)

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger
	bus    eventbus.Bus
	prober *health.Service

	mu     sync.RWMutex
	groups map[string]*broadcast.Group

	runCancel context.CancelFunc
	runWG     sync.WaitGroup
}

func New(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	mgr.SetLogger(log.With(logx.String("component", "config")))

	bus := eventbus.New()
	groups, err := buildGroups(cfg, bus, log)
	if err != nil {
		_ = logSvc.Close()
		return nil, err
	}

	a := &App{
		cfgMgr: mgr,
		logSvc: logSvc,
		log:    log,
		bus:    bus,
		groups: groups,
	}

	probeCfg := health.Config{}
	if cfg.Probe != nil {
		probeCfg = health.Config{Enabled: cfg.Probe.Enabled, Schedule: cfg.Probe.Schedule}
	}
	a.prober = health.New(probeCfg, a.Groups, log.With(logx.String("component", "health")))

	// Reject hot-reloaded configs that cannot be built or scheduled.
	mgr.SetValidator(func(ctx context.Context, c *config.Config) error {
		if _, err := buildGroups(c, bus, logx.Nop()); err != nil {
			return err
		}
		if c.Probe != nil && c.Probe.Enabled && c.Probe.Schedule != "" {
			return a.prober.ValidateSchedule(c.Probe.Schedule)
		}
		return nil
	})

	return a, nil
}

func (a *App) Logger() logx.Logger { return a.log }
func (a *App) Bus() eventbus.Bus   { return a.bus }

// Group returns one broadcast group by name.
func (a *App) Group(name string) (*broadcast.Group, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	g, ok := a.groups[name]
	return g, ok
}

// Groups returns all groups, name-ordered for stable iteration.
func (a *App) Groups() []*broadcast.Group {
	a.mu.RLock()
	defer a.mu.RUnlock()

	names := make([]string, 0, len(a.groups))
	for name := range a.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*broadcast.Group, 0, len(names))
	for _, name := range names {
		out = append(out, a.groups[name])
	}
	return out
}

// Start begins daemon duties: config watching with live rebuild, and the
// probe scheduler. One-shot callers (CLI send) never call Start.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.runCancel = cancel

	a.mu.RLock()
	groupCount := len(a.groups)
	a.mu.RUnlock()

	if err := a.prober.Start(runCtx); err != nil {
		cancel()
		return err
	}

	updates := a.cfgMgr.Subscribe(1)
	a.runWG.Add(2)
	go func() {
		defer a.runWG.Done()
		_ = a.cfgMgr.Watch(runCtx)
	}()
	go func() {
		defer a.runWG.Done()
		for {
			select {
			case <-runCtx.Done():
				return
			case cfg, ok := <-updates:
				if !ok {
					return
				}
				a.applyConfig(cfg)
			}
		}
	}()

	a.log.Info("hookcast started", logx.Int("groups", groupCount))
	return nil
}

func (a *App) Stop() {
	if a.runCancel != nil {
		a.runCancel()
	}
	a.prober.Stop()
	a.runWG.Wait()
	a.log.Info("hookcast stopped")
	_ = a.logSvc.Close()
}

// applyConfig swaps in a validated hot-reloaded config: logging sinks first,
// then a freshly built group set. In-flight broadcasts keep their snapshot
// of the old groups.
func (a *App) applyConfig(cfg *config.Config) {
	a.logSvc.Apply(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})

	groups, err := buildGroups(cfg, a.bus, a.log)
	if err != nil {
		// Validator should have rejected this; keep the old groups.
		a.log.Error("config apply failed; keeping previous groups", logx.Err(err))
		return
	}

	a.mu.Lock()
	a.groups = groups
	a.mu.Unlock()
	a.log.Info("groups rebuilt", logx.Int("groups", len(groups)))
}
