package broadcast

import (
	"context"
	"fmt"
	"sync"

	"hookcast/internal/eventbus"
	"hookcast/pkg/logx"
)

// ConnResult records one client's connectivity probe outcome.
type ConnResult struct {
	Platform  string `json:"platform"`
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// TestConnections probes every registered client concurrently and returns a
// mapping alias -> result once all probes have settled. Clients exposing
// ConnectionTester are asked directly; the rest are probed with a plain
// "Test" send whose failure is caught locally. The call itself never fails.
func (g *Group) TestConnections(ctx context.Context) map[string]ConnResult {
	entries := g.snapshot()
	results := make([]ConnResult, len(entries))

	var wg sync.WaitGroup
	for i := range entries {
		wg.Add(1)
		go func(i int, e entry) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = ConnResult{Platform: e.platform, Error: fmt.Sprintf("panic: %v", r)}
				}
			}()
			results[i] = probeOne(ctx, e)
		}(i, entries[i])
	}
	wg.Wait()

	out := make(map[string]ConnResult, len(entries))
	for i, e := range entries {
		r := results[i]
		out[e.alias] = r
		if r.Connected {
			continue
		}
		g.log.Warn("connectivity probe failed",
			logx.String("alias", e.alias),
			logx.String("platform", e.platform),
			logx.String("err", r.Error))
		g.publish(eventbus.TopicProbeFailed, e, r.Error)
	}
	return out
}

func probeOne(ctx context.Context, e entry) ConnResult {
	if e.tester != nil {
		ok, err := e.tester.TestConnection(ctx)
		if err != nil {
			return ConnResult{Platform: e.platform, Error: err.Error()}
		}
		return ConnResult{Platform: e.platform, Connected: ok}
	}

	// No probe capability: a successful test send is good enough.
	if _, err := e.client.Send(ctx, "Test", nil); err != nil {
		return ConnResult{Platform: e.platform, Error: err.Error()}
	}
	return ConnResult{Platform: e.platform, Connected: true}
}
