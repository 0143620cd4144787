package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"

	"hookcast/internal/app"
	"hookcast/internal/broadcast"
)

func main() {
	var (
		cfgPath  string
		group    string
		message  string
		title    string
		severity string
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml/json")
	flag.StringVar(&group, "group", "", "target one group (one-shot mode; default: all groups)")
	flag.StringVar(&message, "message", "", "one-shot mode: send this message and exit")
	flag.StringVar(&title, "title", "", "embed title for -severity sends")
	flag.StringVar(&severity, "severity", "", "send as a success|error|warning|info embed")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := app.New(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}

	if message != "" {
		code := runOnce(ctx, a, group, severity, title, message)
		a.Stop()
		os.Exit(code)
	}

	if err := a.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "fatal start:", err)
		a.Stop()
		os.Exit(1)
	}
	_, _ = sd.SdNotify(false, sd.SdNotifyReady)
	go watchdog(ctx)

	<-ctx.Done()
	_, _ = sd.SdNotify(false, sd.SdNotifyStopping)
	a.Stop()
}

// watchdog pings systemd at half the configured WatchdogSec interval. A zero
// interval means the unit has no watchdog; nothing to do.
func watchdog(ctx context.Context) {
	interval, err := sd.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = sd.SdNotify(false, sd.SdNotifyWatchdog)
		}
	}
}

// runOnce broadcasts one message and maps any per-client failure to a
// non-zero exit code.
func runOnce(ctx context.Context, a *app.App, group, severity, title, message string) int {
	var groups []*broadcast.Group
	if group != "" {
		g, ok := a.Group(group)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown group %q\n", group)
			return 1
		}
		groups = []*broadcast.Group{g}
	} else {
		groups = a.Groups()
	}
	if len(groups) == 0 {
		fmt.Fprintln(os.Stderr, "no groups configured")
		return 1
	}

	failed := 0
	for _, g := range groups {
		var sum broadcast.Summary
		switch severity {
		case "":
			sum = g.Broadcast(ctx, message, nil)
		case "success":
			sum = g.BroadcastSuccess(ctx, title, message)
		case "error":
			sum = g.BroadcastError(ctx, title, message)
		case "warning":
			sum = g.BroadcastWarning(ctx, title, message)
		case "info":
			sum = g.BroadcastInfo(ctx, title, message)
		default:
			fmt.Fprintf(os.Stderr, "unknown severity %q\n", severity)
			return 1
		}
		failed += sum.Failed()
	}
	if failed > 0 {
		return 1
	}
	return 0
}
