package tuning

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/pixil98/go-survivors/internal/game"
)

const DefaultReloadInterval = 30 * time.Second

// Reloader periodically rebuilds the snapshot and notifies listeners when the
// worlds or archetypes change.
type Reloader struct {
	loader   *Loader
	provider *Provider
	interval time.Duration

	onWorlds     []func([]*game.CombatWorld)
	onArchetypes []func([]*game.Archetype)
}

func NewReloader(loader *Loader, provider *Provider, opts ...ReloaderOpt) *Reloader {
	r := &Reloader{
		loader:   loader,
		provider: provider,
		interval: DefaultReloadInterval,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *Reloader) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Reload(ctx)
		}
	}
}

// Reload loads a new snapshot. A failed load keeps the current snapshot.
func (r *Reloader) Reload(ctx context.Context) {
	next, err := r.loader.Load()
	if err != nil {
		slog.WarnContext(ctx, "keeping previous configuration", "error", err)
		return
	}

	prev := r.provider.Current()
	r.provider.Store(next)

	if prev == nil || !reflect.DeepEqual(prev.Worlds, next.Worlds) {
		slog.InfoContext(ctx, "combat worlds changed", "worlds", len(next.Worlds))
		for _, fn := range r.onWorlds {
			fn(next.Worlds)
		}
	}
	if prev == nil || !reflect.DeepEqual(prev.Archetypes, next.Archetypes) {
		slog.InfoContext(ctx, "archetypes changed", "archetypes", len(next.Archetypes))
		for _, fn := range r.onArchetypes {
			fn(next.Archetypes)
		}
	}
}

type ReloaderOpt func(*Reloader)

func WithReloadInterval(d time.Duration) ReloaderOpt {
	return func(r *Reloader) {
		if d > 0 {
			r.interval = d
		}
	}
}

// OnWorldsChanged registers a listener for combat world changes.
func OnWorldsChanged(fn func([]*game.CombatWorld)) ReloaderOpt {
	return func(r *Reloader) {
		r.onWorlds = append(r.onWorlds, fn)
	}
}

// OnArchetypesChanged registers a listener for archetype changes.
func OnArchetypesChanged(fn func([]*game.Archetype)) ReloaderOpt {
	return func(r *Reloader) {
		r.onArchetypes = append(r.onArchetypes, fn)
	}
}
