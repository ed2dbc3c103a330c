package tuning

import (
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/storage"
)

// Snapshot is an immutable view of every hot reloadable setting. Holders of
// a snapshot must not modify it.
type Snapshot struct {
	Spawning   Spawning
	Archetypes []*game.Archetype
	Worlds     []*game.CombatWorld

	archetypeIdx map[string]*game.Archetype
	worldIdx     map[string]*game.CombatWorld
}

// NewSnapshot copies the given definitions, fills in their identifiers from
// the map keys, and orders them by identifier.
func NewSnapshot(spawning Spawning, archetypes map[string]*game.Archetype, worlds map[string]*game.CombatWorld) *Snapshot {
	s := &Snapshot{
		Spawning:     spawning,
		archetypeIdx: make(map[string]*game.Archetype, len(archetypes)),
		worldIdx:     make(map[string]*game.CombatWorld, len(worlds)),
	}

	for id, a := range archetypes {
		cp := *a
		cp.ID = id
		cp.AllowedWorlds = slices.Clone(a.AllowedWorlds)
		cp.Commands = slices.Clone(a.Commands)
		s.Archetypes = append(s.Archetypes, &cp)
		s.archetypeIdx[id] = &cp
	}
	slices.SortFunc(s.Archetypes, func(a, b *game.Archetype) int {
		return strings.Compare(a.ID, b.ID)
	})

	for name, w := range worlds {
		cp := *w
		cp.Name = name
		cp.SpawnPoints = slices.Clone(w.SpawnPoints)
		s.Worlds = append(s.Worlds, &cp)
		s.worldIdx[name] = &cp
	}
	slices.SortFunc(s.Worlds, func(a, b *game.CombatWorld) int {
		return strings.Compare(a.Name, b.Name)
	})

	return s
}

func (s *Snapshot) Archetype(id string) *game.Archetype {
	return s.archetypeIdx[id]
}

func (s *Snapshot) World(name string) *game.CombatWorld {
	return s.worldIdx[name]
}

// Provider hands out the current snapshot. Stores replace it atomically so a
// reader never sees a half applied reload.
type Provider struct {
	current atomic.Pointer[Snapshot]
}

func NewProvider(initial *Snapshot) *Provider {
	p := &Provider{}
	p.current.Store(initial)
	return p
}

func (p *Provider) Current() *Snapshot {
	return p.current.Load()
}

func (p *Provider) Store(s *Snapshot) {
	p.current.Store(s)
}

// CombatWorlds returns the worlds of the current snapshot.
func (p *Provider) CombatWorlds() []*game.CombatWorld {
	return p.Current().Worlds
}

// Loader builds snapshots from the asset stores and the tuning file.
type Loader struct {
	archetypes storage.Storer[*game.Archetype]
	worlds     storage.Storer[*game.CombatWorld]
	tuningPath string
}

func NewLoader(archetypes storage.Storer[*game.Archetype], worlds storage.Storer[*game.CombatWorld], tuningPath string) *Loader {
	return &Loader{
		archetypes: archetypes,
		worlds:     worlds,
		tuningPath: tuningPath,
	}
}

// Load rereads every source and builds a new snapshot.
func (l *Loader) Load() (*Snapshot, error) {
	if err := l.archetypes.Reload(); err != nil {
		return nil, fmt.Errorf("reloading archetypes: %w", err)
	}
	if err := l.worlds.Reload(); err != nil {
		return nil, fmt.Errorf("reloading worlds: %w", err)
	}
	spawning, err := LoadSpawning(l.tuningPath)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(spawning, l.archetypes.GetAll(), l.worlds.GetAll()), nil
}
