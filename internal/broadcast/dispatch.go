package broadcast

import (
	"context"
	"fmt"
	"sync"

	"hookcast/internal/eventbus"
	"hookcast/pkg/logx"
)

// Result records the outcome of one client's dispatch.
type Result struct {
	Success  bool   `json:"success"`
	Platform string `json:"platform"`
	Response any    `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
	// Note is set only when an embed silently fell back to plain text.
	Note string `json:"note,omitempty"`
}

// Summary aggregates one broadcast call. TotalClients is a snapshot of the
// registered count at call time.
type Summary struct {
	Group        string            `json:"group"`
	TotalClients int               `json:"total_clients"`
	Results      map[string]Result `json:"results"`
}

// Failed returns how many clients reported a failure.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// Broadcast sends a plain-text message to every registered client
// concurrently and returns the aggregated summary once all outcomes have
// settled. It never fails as a whole.
func (g *Group) Broadcast(ctx context.Context, text string, opts SendOptions) Summary {
	return g.fanOut(ctx, "broadcast", func(ctx context.Context, e entry) Result {
		resp, err := e.client.Send(ctx, text, opts)
		if err != nil {
			return Result{Platform: e.platform, Error: err.Error()}
		}
		return Result{Success: true, Platform: e.platform, Response: resp}
	})
}

// fanOut runs do once per registered client, each in its own goroutine, and
// joins on all of them regardless of individual outcome. Each goroutine
// writes only its own index, so no locking is needed around results.
func (g *Group) fanOut(ctx context.Context, op string, do func(context.Context, entry) Result) Summary {
	entries := g.snapshot()
	results := make([]Result, len(entries))

	var wg sync.WaitGroup
	for i := range entries {
		wg.Add(1)
		go func(i int, e entry) {
			defer wg.Done()
			defer func() {
				// A panicking client is contained like any other failure.
				if r := recover(); r != nil {
					results[i] = Result{Platform: e.platform, Error: fmt.Sprintf("panic: %v", r)}
				}
			}()
			results[i] = do(ctx, e)
		}(i, entries[i])
	}
	wg.Wait()

	sum := Summary{
		Group:        g.name,
		TotalClients: len(entries),
		Results:      make(map[string]Result, len(entries)),
	}
	for i, e := range entries {
		r := results[i]
		sum.Results[e.alias] = r
		if r.Success {
			g.publish(eventbus.TopicBroadcastSent, e, "")
			continue
		}
		g.log.Warn(op+" send failed",
			logx.String("alias", e.alias),
			logx.String("platform", e.platform),
			logx.String("err", r.Error))
		g.publish(eventbus.TopicBroadcastFailed, e, r.Error)
	}
	if failed := sum.Failed(); failed > 0 {
		g.log.Warn(op+" finished with failures",
			logx.Int("total", sum.TotalClients),
			logx.Int("failed", failed))
	} else {
		g.log.Info(op+" finished",
			logx.Int("total", sum.TotalClients))
	}
	return sum
}

func (g *Group) publish(topic string, e entry, errText string) {
	if g.bus == nil {
		return
	}
	g.bus.Publish(eventbus.Event{
		Topic: topic,
		Data: eventbus.DeliveryEvent{
			Group:    g.name,
			Alias:    e.alias,
			Platform: e.platform,
			Error:    errText,
		},
	})
}
