package game

import (
	"fmt"
	"slices"

	"github.com/pixil98/go-errors"
)

// AnyWorld in an archetype's allowed worlds matches every world.
const AnyWorld = "*"

// Archetype is a category of hostile actor that the spawner can place.
type Archetype struct {
	// ID is filled from the asset identifier when the archetype is loaded.
	ID string `json:"-" yaml:"-"`

	EnemyType     string   `json:"enemy_type" yaml:"enemy_type"`
	Weight        float64  `json:"weight" yaml:"weight"`
	MinSpawnLevel int      `json:"min_spawn_level" yaml:"min_spawn_level"`
	AllowedWorlds []string `json:"allowed_worlds" yaml:"allowed_worlds"`
	Commands      []string `json:"commands" yaml:"commands"`
}

// Validate satisfies storage.ValidatingSpec.
func (a *Archetype) Validate() error {
	el := errors.NewErrorList()

	if a.EnemyType == "" {
		el.Add(fmt.Errorf("enemy_type is required"))
	}
	if a.Weight < 0 {
		el.Add(fmt.Errorf("weight must not be negative"))
	}
	if a.MinSpawnLevel < 0 {
		el.Add(fmt.Errorf("min_spawn_level must not be negative"))
	}
	if len(a.Commands) == 0 {
		el.Add(fmt.Errorf("at least one command is required"))
	}
	for i, c := range a.Commands {
		if c == "" {
			el.Add(fmt.Errorf("command %d is empty", i))
		}
	}

	return el.Err()
}

// AllowedIn reports whether the archetype may appear in the named world.
// An empty allow list behaves like the wildcard.
func (a *Archetype) AllowedIn(world string) bool {
	if len(a.AllowedWorlds) == 0 {
		return true
	}
	return slices.Contains(a.AllowedWorlds, AnyWorld) || slices.Contains(a.AllowedWorlds, world)
}

// EligibleAt reports whether the archetype can be chosen for an enemy of the
// given level in the given world.
func (a *Archetype) EligibleAt(level int, world string) bool {
	return a.MinSpawnLevel <= level && a.AllowedIn(world)
}
