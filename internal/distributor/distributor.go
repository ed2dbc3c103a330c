package distributor

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/rng"
	"github.com/pixil98/go-survivors/internal/tracker"
)

// minScore keeps every candidate selectable.
const minScore = 1e-3

var ErrNoWorldAvailable = errors.New("no combat world available")

// Metric is the live state of one candidate world.
type Metric struct {
	World        string
	Participants int
	Capacity     int
	Weight       float64
}

// Score is capacity per present participant, scaled by the world's weight.
func (m Metric) Score() float64 {
	s := float64(m.Capacity) / float64(m.Participants+1) * m.Weight
	return max(minScore, s)
}

// SelectIndex returns the index of the chosen metric, or -1 when metrics is
// empty. Worlds without participants are always preferred; among the
// remaining candidates the choice is proportional to Score.
func SelectIndex(metrics []Metric, src rng.Source) int {
	if len(metrics) == 0 {
		return -1
	}

	var candidates []int
	for i, m := range metrics {
		if m.Participants == 0 {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		for i := range metrics {
			candidates = append(candidates, i)
		}
	}

	total := 0.0
	for _, i := range candidates {
		total += metrics[i].Score()
	}
	if total <= 0 {
		return candidates[0]
	}

	draw := src.Float64() * total
	cumulative := 0.0
	for _, i := range candidates {
		cumulative += metrics[i].Score()
		if draw <= cumulative {
			return i
		}
	}
	return candidates[len(candidates)-1]
}

// WorldLister supplies the current combat world configuration.
type WorldLister interface {
	CombatWorlds() []*game.CombatWorld
}

// Occupancy reports how many participants are live in a world.
type Occupancy interface {
	ParticipantsIn(world string) int
}

// PointSelector picks a spawn point inside a world.
type PointSelector interface {
	SelectLeastLoaded(world string) (tracker.Entry, bool)
}

// Route is where a new cohort should begin.
type Route struct {
	World *game.CombatWorld
	Entry tracker.Entry
}

// Distributor routes new cohorts across combat worlds.
type Distributor struct {
	worlds    WorldLister
	occupancy Occupancy
	points    PointSelector
	src       rng.Source

	disabled map[string]bool
	mu       sync.RWMutex
}

func NewDistributor(worlds WorldLister, occupancy Occupancy, points PointSelector, src rng.Source) *Distributor {
	return &Distributor{
		worlds:    worlds,
		occupancy: occupancy,
		points:    points,
		src:       src,
		disabled:  map[string]bool{},
	}
}

// Disable takes a world out of rotation without touching its configuration.
func (d *Distributor) Disable(world string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disabled[world] = true
}

func (d *Distributor) Enable(world string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.disabled, world)
}

// Enabled returns the names of worlds currently eligible for new cohorts.
func (d *Distributor) Enabled() []string {
	var names []string
	for _, w := range d.candidates() {
		names = append(names, w.Name)
	}
	return names
}

func (d *Distributor) candidates() []*game.CombatWorld {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []*game.CombatWorld
	for _, w := range d.worlds.CombatWorlds() {
		if !w.IsEnabled() || d.disabled[w.Name] || len(w.SpawnPoints) == 0 {
			continue
		}
		out = append(out, w)
	}
	slices.SortFunc(out, func(a, b *game.CombatWorld) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Metrics builds the selection input for every candidate world.
func (d *Distributor) Metrics() ([]*game.CombatWorld, []Metric) {
	worlds := d.candidates()
	metrics := make([]Metric, len(worlds))
	for i, w := range worlds {
		metrics[i] = Metric{
			World:        w.Name,
			Participants: d.occupancy.ParticipantsIn(w.Name),
			Capacity:     len(w.SpawnPoints),
			Weight:       w.Weight,
		}
	}
	return worlds, metrics
}

// Route chooses a world and one of its least loaded spawn points.
func (d *Distributor) Route(ctx context.Context) (Route, error) {
	worlds, metrics := d.Metrics()
	idx := SelectIndex(metrics, d.src)
	if idx < 0 {
		return Route{}, ErrNoWorldAvailable
	}
	w := worlds[idx]

	entry, ok := d.points.SelectLeastLoaded(w.Name)
	if !ok {
		sp := w.SpawnPoints[0]
		entry = tracker.Entry{World: w.Name, Point: sp, Radius: sp.Radius()}
	}

	slog.DebugContext(ctx, "routed cohort",
		"world", w.Name,
		"spawn_point", entry.Index,
		"participants", metrics[idx].Participants,
		"candidates", len(worlds))

	return Route{World: w, Entry: entry}, nil
}
