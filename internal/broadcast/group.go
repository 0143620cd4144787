package broadcast

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"hookcast/internal/eventbus"
	"hookcast/pkg/logx"
)

var (
	// ErrNilClient is returned by Add for a nil client. Registration errors
	// surface synchronously, before any network activity.
	ErrNilClient = errors.New("invalid client: must implement Send")

	// ErrDuplicateAlias is returned by Add when the alias is already taken
	// within the group. Two clients must never share one result slot.
	ErrDuplicateAlias = errors.New("duplicate alias")
)

// entry is one registered participant. Optional capabilities are resolved
// once here so dispatch never does per-call probing.
type entry struct {
	alias    string
	platform string
	client   Client
	embedder EmbedSender
	tester   ConnectionTester
}

// Group is a named, ordered collection of platform clients. It holds
// non-owning references; the caller remains responsible for client
// lifecycles. Safe for concurrent use.
type Group struct {
	name string
	log  logx.Logger
	bus  eventbus.Bus

	mu      sync.RWMutex
	entries []entry
}

type Option func(*Group)

func WithLogger(log logx.Logger) Option { return func(g *Group) { g.log = log } }
func WithBus(bus eventbus.Bus) Option   { return func(g *Group) { g.bus = bus } }

func NewGroup(name string, opts ...Option) *Group {
	g := &Group{name: name, log: logx.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	g.log = g.log.With(logx.String("group", name))
	return g
}

func (g *Group) Name() string { return g.name }

// Add registers a client under the given alias. An empty alias auto-assigns
// "client_<n>" where n is the registered count at insertion time, bumped
// past any numbers still taken after removals.
func (g *Group) Add(client Client, alias string) error {
	if client == nil {
		return ErrNilClient
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if alias == "" {
		alias = g.nextAliasLocked()
	} else if g.indexOfLocked(alias) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateAlias, alias)
	}

	e := entry{
		alias:    alias,
		platform: strings.ToLower(strings.TrimSpace(client.Platform())),
		client:   client,
	}
	e.embedder, _ = client.(EmbedSender)
	e.tester, _ = client.(ConnectionTester)

	g.entries = append(g.entries, e)
	g.log.Debug("client registered",
		logx.String("alias", e.alias),
		logx.String("platform", e.platform),
		logx.Bool("embeds", e.embedder != nil),
		logx.Bool("probe", e.tester != nil))
	return nil
}

// Remove drops the first entry whose alias matches exactly. A missing alias
// is a normal outcome, not an error.
func (g *Group) Remove(alias string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := g.indexOfLocked(alias)
	if i < 0 {
		return false
	}
	g.entries = append(g.entries[:i], g.entries[i+1:]...)
	g.log.Debug("client removed", logx.String("alias", alias))
	return true
}

// Size returns the current registered count.
func (g *Group) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

// ClientInfo is a read-only view of one registered entry.
type ClientInfo struct {
	Alias    string `json:"alias"`
	Platform string `json:"platform"`
}

// Clients returns the registered entries in insertion order.
func (g *Group) Clients() []ClientInfo {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]ClientInfo, len(g.entries))
	for i, e := range g.entries {
		out[i] = ClientInfo{Alias: e.alias, Platform: e.platform}
	}
	return out
}

func (g *Group) indexOfLocked(alias string) int {
	for i, e := range g.entries {
		if e.alias == alias {
			return i
		}
	}
	return -1
}

func (g *Group) nextAliasLocked() string {
	n := len(g.entries) + 1
	for {
		alias := fmt.Sprintf("client_%d", n)
		if g.indexOfLocked(alias) < 0 {
			return alias
		}
		n++
	}
}

// snapshot copies the entry list so dispatch runs lock-free and Add/Remove
// during an in-flight broadcast cannot affect it.
func (g *Group) snapshot() []entry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]entry(nil), g.entries...)
}
