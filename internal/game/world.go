package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-errors"
)

// DefaultTrackingRadius is used for spawn points that do not set their own.
const DefaultTrackingRadius = 50.0

// CombatWorld is a world instance that cohorts can be routed into.
type CombatWorld struct {
	// Name is filled from the asset identifier when the world is loaded.
	Name string `json:"-" yaml:"-"`

	DisplayName string       `json:"display_name" yaml:"display_name"`
	Enabled     *bool        `json:"enabled" yaml:"enabled"`
	Weight      float64      `json:"weight" yaml:"weight"`
	Bounds      *Bounds      `json:"bounds,omitempty" yaml:"bounds,omitempty"`
	SpawnPoints []SpawnPoint `json:"spawn_points" yaml:"spawn_points"`
}

// Validate satisfies storage.ValidatingSpec.
func (w *CombatWorld) Validate() error {
	el := errors.NewErrorList()

	if w.Weight < 0 {
		el.Add(fmt.Errorf("weight must not be negative"))
	}
	if w.Bounds != nil {
		el.Add(w.Bounds.Validate())
	}
	for i, sp := range w.SpawnPoints {
		if err := sp.Validate(); err != nil {
			el.Add(fmt.Errorf("spawn point %d: %w", i, err))
		}
	}

	return el.Err()
}

// IsEnabled defaults to true when the flag is omitted.
func (w *CombatWorld) IsEnabled() bool {
	return w.Enabled == nil || *w.Enabled
}

// Contains reports whether a position lies within the world's bounds.
// Worlds without bounds contain everything.
func (w *CombatWorld) Contains(pos mgl64.Vec3) bool {
	if w.Bounds == nil {
		return true
	}
	return w.Bounds.Contains(pos)
}

// Bounds is an axis aligned horizontal rectangle.
type Bounds struct {
	MinX float64 `json:"min_x" yaml:"min_x"`
	MaxX float64 `json:"max_x" yaml:"max_x"`
	MinZ float64 `json:"min_z" yaml:"min_z"`
	MaxZ float64 `json:"max_z" yaml:"max_z"`
}

func (b *Bounds) Validate() error {
	el := errors.NewErrorList()
	if b.MinX > b.MaxX {
		el.Add(fmt.Errorf("bounds min_x greater than max_x"))
	}
	if b.MinZ > b.MaxZ {
		el.Add(fmt.Errorf("bounds min_z greater than max_z"))
	}
	return el.Err()
}

func (b *Bounds) Contains(pos mgl64.Vec3) bool {
	return pos.X() >= b.MinX && pos.X() <= b.MaxX && pos.Z() >= b.MinZ && pos.Z() <= b.MaxZ
}

// SpawnPoint is a registered location inside a combat world.
type SpawnPoint struct {
	X              float64  `json:"x" yaml:"x"`
	Y              float64  `json:"y" yaml:"y"`
	Z              float64  `json:"z" yaml:"z"`
	Yaw            *float64 `json:"yaw,omitempty" yaml:"yaw,omitempty"`
	Pitch          *float64 `json:"pitch,omitempty" yaml:"pitch,omitempty"`
	TrackingRadius float64  `json:"tracking_radius,omitempty" yaml:"tracking_radius,omitempty"`
}

func (sp SpawnPoint) Validate() error {
	if sp.TrackingRadius < 0 {
		return fmt.Errorf("tracking_radius must not be negative")
	}
	return nil
}

func (sp SpawnPoint) Position() mgl64.Vec3 {
	return mgl64.Vec3{sp.X, sp.Y, sp.Z}
}

// Radius returns the tracking radius, falling back to DefaultTrackingRadius.
func (sp SpawnPoint) Radius() float64 {
	if sp.TrackingRadius > 0 {
		return sp.TrackingRadius
	}
	return DefaultTrackingRadius
}
