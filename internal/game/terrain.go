package game

const (
	DefaultMinHeight = -64
	DefaultMaxHeight = 320
)

// Block describes the physical properties of a single world cell.
type Block struct {
	Solid    bool
	Passable bool
	Liquid   bool
}

var (
	BlockAir    = Block{Passable: true}
	BlockGround = Block{Solid: true}
	BlockLiquid = Block{Passable: true, Liquid: true}
)

// Column is the vertical profile of one horizontal cell. Everything at or
// below Surface is solid, unless Liquid is set in which case the top cell
// holds liquid instead.
type Column struct {
	Surface int  `msgpack:"surface"`
	Liquid  bool `msgpack:"liquid"`
}

func (c Column) blockAt(y int) Block {
	switch {
	case y > c.Surface:
		return BlockAir
	case y == c.Surface && c.Liquid:
		return BlockLiquid
	default:
		return BlockGround
	}
}

type columnKey struct {
	x, z int
}

// heightmap is the terrain of one world. Cells without a column are air.
type heightmap struct {
	columns map[columnKey]Column
}

func newHeightmap() *heightmap {
	return &heightmap{columns: map[columnKey]Column{}}
}

func (h *heightmap) blockAt(x, y, z int) Block {
	c, ok := h.columns[columnKey{x, z}]
	if !ok {
		return BlockAir
	}
	return c.blockAt(y)
}
