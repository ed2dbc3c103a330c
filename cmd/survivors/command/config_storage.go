package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/storage"
	"github.com/pixil98/go-survivors/internal/tuning"
)

type StorageConfig struct {
	Archetypes AssetConfig[*game.Archetype]   `json:"archetypes"`
	Worlds     AssetConfig[*game.CombatWorld] `json:"worlds"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Archetypes.Validate("archetypes"))
	el.Add(c.Worlds.Validate("worlds"))
	return el.Err()
}

// BuildLoader creates the asset stores and the snapshot loader over them.
func (c *StorageConfig) BuildLoader(tuningPath string) (*tuning.Loader, error) {
	archetypes, err := c.Archetypes.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating archetype store: %w", err)
	}
	worlds, err := c.Worlds.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating world store: %w", err)
	}
	return tuning.NewLoader(archetypes, worlds, tuningPath), nil
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
