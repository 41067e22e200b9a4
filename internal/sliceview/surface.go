package sliceview

import (
	"fmt"
	"image"

	"slice-viewer/pkg/geometry"
)

const defaultSurfaceSize = 300

// PointerHandler receives the raw events a surface delivers.
type PointerHandler interface {
	MouseDown(ev Event) error
	MouseMove(ev Event) error
	MouseUp(ev Event) error
	MouseOut(ev Event) error
	Click(ev Event) error
	Scroll(ev Event) error
}

// Surface is the drawable region a slice view renders into.
type Surface interface {
	// ID returns the identifier the surface is registered under.
	ID() string
	// Size returns the drawable size in pixels.
	Size() (width, height int)
	// BoundingBox returns the surface position and size in client coordinates.
	BoundingBox() geometry.Rect
	// Present displays a rendered frame.
	Present(img image.Image)
	// Bind routes pointer and scroll events to h, replacing any previous handler.
	Bind(h PointerHandler)
	// Unbind stops event delivery.
	Unbind()
}

// SurfaceProvider resolves a SurfaceSpec into a concrete surface.
type SurfaceProvider interface {
	Lookup(id string) (Surface, error)
	Create(width, height int) (Surface, error)
}

// SurfaceSpec selects either an existing surface by id or a new surface of
// a given size. The zero value is a new 300x300 surface.
type SurfaceSpec struct {
	id     string
	width  int
	height int
}

// ExistingSurface selects a surface already registered with the provider.
func ExistingSurface(id string) SurfaceSpec {
	return SurfaceSpec{id: id}
}

// NewSurface requests a new surface. A zero height defaults to width.
func NewSurface(width, height int) SurfaceSpec {
	return SurfaceSpec{width: width, height: height}
}

// Existing reports whether the spec refers to a surface by id.
func (s SurfaceSpec) Existing() bool {
	return s.id != ""
}

// Dimensions returns the requested size with defaults applied.
func (s SurfaceSpec) Dimensions() (width, height int) {
	width, height = s.width, s.height
	if width == 0 {
		width = defaultSurfaceSize
	}
	if height == 0 {
		height = width
	}
	return width, height
}

func (s SurfaceSpec) resolve(p SurfaceProvider) (Surface, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: surface provider is required", ErrConfiguration)
	}
	if s.Existing() {
		surf, err := p.Lookup(s.id)
		if err != nil {
			return nil, fmt.Errorf("%w: surface %q: %v", ErrConfiguration, s.id, err)
		}
		return surf, nil
	}

	w, h := s.Dimensions()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: surface size must be positive, got %dx%d", ErrConfiguration, w, h)
	}
	surf, err := p.Create(w, h)
	if err != nil {
		return nil, fmt.Errorf("%w: create %dx%d surface: %v", ErrConfiguration, w, h, err)
	}
	return surf, nil
}
