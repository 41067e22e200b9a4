package geometry

import "fmt"

// Axis identifies one of the three spatial axes of a volume.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Axes lists every spatial axis in index order.
var Axes = [3]Axis{AxisX, AxisY, AxisZ}

// Valid reports whether a is one of AxisX, AxisY or AxisZ.
func (a Axis) Valid() bool {
	return a >= AxisX && a <= AxisZ
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Coord is a position in volume space, indexed by Axis. Values are in voxel
// units and may be fractional.
type Coord [3]float64

// NewCoord creates a Coord from x, y and z.
func NewCoord(x, y, z float64) Coord {
	return Coord{x, y, z}
}

// Get returns the value on axis a.
func (c Coord) Get(a Axis) float64 {
	return c[a]
}

// Set stores v on axis a.
func (c *Coord) Set(a Axis, v float64) {
	c[a] = v
}

// Merge returns c with the listed axes taken from other.
func (c Coord) Merge(other Coord, axes ...Axis) Coord {
	for _, a := range axes {
		c[a] = other[a]
	}
	return c
}

func (c Coord) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", c[AxisX], c[AxisY], c[AxisZ])
}
