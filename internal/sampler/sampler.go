package sampler

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pixil98/go-survivors/internal/game"
	"github.com/pixil98/go-survivors/internal/rng"
)

// Terrain answers block queries for a world.
type Terrain interface {
	BlockAt(world string, x, y, z int) game.Block
	HeightRange(world string) (min int, max int)
}

// Filter rejects candidate placements, for example ones outside a world's
// bounds or inside a suppression zone.
type Filter func(world string, pos mgl64.Vec3) bool

// Sampler finds safe placements around a center point.
type Sampler struct {
	terrain Terrain
	src     rng.Source
}

func New(terrain Terrain, src rng.Source) *Sampler {
	return &Sampler{
		terrain: terrain,
		src:     src,
	}
}

// Sample tries up to attempts random offsets between minDist and maxDist from
// center and returns the first safe placement that every filter accepts.
// Running out of attempts is not an error; the caller should try again later.
func (s *Sampler) Sample(world string, center mgl64.Vec3, minDist, maxDist float64, attempts int, filters ...Filter) (mgl64.Vec3, bool) {
	for i := 0; i < attempts; i++ {
		angle := rng.Angle(s.src)
		dist := rng.Distance(s.src, minDist, maxDist)

		x := center.X() + math.Cos(angle)*dist
		z := center.Z() + math.Sin(angle)*dist

		pos, ok := s.SafeSurface(world, x, z)
		if !ok {
			continue
		}
		if !accepted(world, pos, filters) {
			continue
		}
		return pos, true
	}
	return mgl64.Vec3{}, false
}

// SafeSurface scans the column containing (x, z) from the top down for the
// highest solid, dry block with two passable, dry blocks above it. The
// returned position stands on that block, centred in the cell.
func (s *Sampler) SafeSurface(world string, x, z float64) (mgl64.Vec3, bool) {
	bx := int(math.Floor(x))
	bz := int(math.Floor(z))
	minY, maxY := s.terrain.HeightRange(world)

	for y := maxY - 1; y >= minY; y-- {
		ground := s.terrain.BlockAt(world, bx, y, bz)
		if !ground.Solid || ground.Liquid {
			continue
		}
		if !clear(s.terrain.BlockAt(world, bx, y+1, bz)) || !clear(s.terrain.BlockAt(world, bx, y+2, bz)) {
			continue
		}
		return mgl64.Vec3{float64(bx) + 0.5, float64(y + 1), float64(bz) + 0.5}, true
	}
	return mgl64.Vec3{}, false
}

func clear(b game.Block) bool {
	return b.Passable && !b.Liquid
}

func accepted(world string, pos mgl64.Vec3, filters []Filter) bool {
	for _, f := range filters {
		if f != nil && !f(world, pos) {
			return false
		}
	}
	return true
}
