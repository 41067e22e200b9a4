// Package plane describes which volume axis a slice pane holds constant and
// which two axes it maps onto the surface.
package plane

import (
	"errors"
	"fmt"

	"slice-viewer/pkg/geometry"
)

// ErrInvalidPlane is returned when a descriptor's axes are not pairwise
// distinct or do not cover all three spatial axes.
var ErrInvalidPlane = errors.New("invalid plane descriptor")

// Descriptor identifies the constant axis of a pane and the axes shown on
// the surface's horizontal (X) and vertical (Y) directions.
type Descriptor struct {
	Name     string
	Constant geometry.Axis
	X        geometry.Axis
	Y        geometry.Axis
}

// Standard radiological planes for a volume stored as X=left/right,
// Y=anterior/posterior, Z=inferior/superior.
var (
	Axial    = Descriptor{Name: "axial", Constant: geometry.AxisZ, X: geometry.AxisX, Y: geometry.AxisY}
	Coronal  = Descriptor{Name: "coronal", Constant: geometry.AxisY, X: geometry.AxisX, Y: geometry.AxisZ}
	Sagittal = Descriptor{Name: "sagittal", Constant: geometry.AxisX, X: geometry.AxisY, Y: geometry.AxisZ}
)

// New builds and validates a descriptor.
func New(name string, constant, x, y geometry.Axis) (Descriptor, error) {
	d := Descriptor{Name: name, Constant: constant, X: x, Y: y}
	if err := d.Validate(); err != nil {
		return Descriptor{}, err
	}
	return d, nil
}

// ByName returns one of the standard planes.
func ByName(name string) (Descriptor, error) {
	switch name {
	case "axial":
		return Axial, nil
	case "coronal":
		return Coronal, nil
	case "sagittal":
		return Sagittal, nil
	}
	return Descriptor{}, fmt.Errorf("%w: unknown plane %q", ErrInvalidPlane, name)
}

// Validate checks that the three axes are distinct and cover X, Y and Z.
func (d Descriptor) Validate() error {
	var seen [3]bool
	for _, a := range []geometry.Axis{d.Constant, d.X, d.Y} {
		if !a.Valid() {
			return fmt.Errorf("%w: axis %v out of range", ErrInvalidPlane, a)
		}
		if seen[a] {
			return fmt.Errorf("%w: axis %v used twice", ErrInvalidPlane, a)
		}
		seen[a] = true
	}
	return nil
}

// Decompose returns the constant axis followed by the surface X and Y axes.
func (d Descriptor) Decompose() (constant geometry.Axis, x, y geometry.Axis) {
	return d.Constant, d.X, d.Y
}

// Compose builds a volume coordinate from surface-axis values u (horizontal)
// and v (vertical), copying the constant axis from base.
func (d Descriptor) Compose(u, v float64, base geometry.Coord) geometry.Coord {
	var c geometry.Coord
	c.Set(d.X, u)
	c.Set(d.Y, v)
	c.Set(d.Constant, base.Get(d.Constant))
	return c
}

// Project returns the surface-axis values of c.
func (d Descriptor) Project(c geometry.Coord) (u, v float64) {
	return c.Get(d.X), c.Get(d.Y)
}

func (d Descriptor) String() string {
	if d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("plane(%v|%v,%v)", d.Constant, d.X, d.Y)
}
