package health

import (
	"context"
	"testing"

	"hookcast/internal/broadcast"
	"hookcast/pkg/logx"
)

func TestValidateSchedule(t *testing.T) {
	s := New(Config{}, func() []*broadcast.Group { return nil }, logx.Nop())

	valid := []string{"@every 90s", "@hourly", "*/5 * * * *", "0 12 * * MON"}
	for _, expr := range valid {
		if err := s.ValidateSchedule(expr); err != nil {
			t.Fatalf("ValidateSchedule(%q) = %v, want nil", expr, err)
		}
	}

	invalid := []string{"", "every 5m", "* * *", "@every banana"}
	for _, expr := range invalid {
		if err := s.ValidateSchedule(expr); err == nil {
			t.Fatalf("ValidateSchedule(%q) accepted a bad expression", expr)
		}
	}
}

func TestStartDisabledIsNoop(t *testing.T) {
	s := New(Config{Enabled: false}, func() []*broadcast.Group { return nil }, logx.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.c != nil {
		t.Fatalf("disabled prober started a cron runner")
	}
	s.Stop()
}

func TestStartRejectsBadSchedule(t *testing.T) {
	s := New(Config{Enabled: true, Schedule: "not a schedule"},
		func() []*broadcast.Group { return nil }, logx.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := s.Start(ctx); err == nil {
		t.Fatalf("Start accepted an invalid schedule")
	}
}
