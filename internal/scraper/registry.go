package scraper

import (
	"time"

	"github.com/jimezsa/atsscan/internal/network"
	"github.com/jimezsa/atsscan/internal/ratelimit"
	"github.com/rs/zerolog"
)

// Registry maps platform names to adapters. Lookups ignore case, spaces and hyphens.
type Registry struct {
	adapters     map[string]Adapter
	names        []string
	stubFallback bool
}

func NewRegistry(stubFallback bool, adapters ...Adapter) *Registry {
	r := &Registry{
		adapters:     map[string]Adapter{},
		stubFallback: stubFallback,
	}
	for _, adapter := range adapters {
		r.Register(adapter)
	}
	return r
}

// Register adds adapter, replacing any adapter already registered under the same name.
func (r *Registry) Register(adapter Adapter) {
	key := PlatformKey(adapter.Name())
	if _, ok := r.adapters[key]; !ok {
		r.names = append(r.names, adapter.Name())
	}
	r.adapters[key] = adapter
}

func (r *Registry) Resolve(platform string) (Adapter, bool) {
	adapter, ok := r.adapters[PlatformKey(platform)]
	return adapter, ok
}

// Names returns registered platform names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// StubFallback reports whether unregistered platforms should be served by a Stub.
func (r *Registry) StubFallback() bool {
	return r.stubFallback
}

// Roster supplies the companies to query on each platform.
type Roster interface {
	Companies(platform string) []string
}

// BuildConfig wires the built-in adapters.
type BuildConfig struct {
	Rotator      *network.Rotator
	Roster       Roster
	Limiter      *ratelimit.Limiter
	Timeout      time.Duration
	Logger       zerolog.Logger
	StubFallback bool
}

// Build creates the built-in adapters, each with its own HTTP client.
func Build(cfg BuildConfig) (*Registry, error) {
	constructors := []struct {
		platform string
		build    func(Options) Adapter
	}{
		{PlatformGreenhouse, func(o Options) Adapter { return NewGreenhouse(o) }},
		{PlatformLever, func(o Options) Adapter { return NewLever(o) }},
		{PlatformAshby, func(o Options) Adapter { return NewAshby(o) }},
		{PlatformSmartRecruiters, func(o Options) Adapter { return NewSmartRecruiters(o) }},
	}

	registry := NewRegistry(cfg.StubFallback)
	for _, c := range constructors {
		client, err := network.NewClient(network.ClientOptions{
			Rotator: cfg.Rotator,
			Timeout: cfg.Timeout,
			Logger:  cfg.Logger.With().Str("platform", c.platform).Logger(),
		})
		if err != nil {
			return nil, err
		}
		var companies []string
		if cfg.Roster != nil {
			companies = cfg.Roster.Companies(c.platform)
		}
		registry.Register(c.build(Options{
			Client:    client,
			Companies: companies,
			Limiter:   cfg.Limiter,
			Timeout:   cfg.Timeout,
			Logger:    cfg.Logger,
		}))
	}
	return registry, nil
}
