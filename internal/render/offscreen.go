package render

import (
	"fmt"
	"image"
	"sync"

	"slice-viewer/internal/sliceview"
	"slice-viewer/pkg/geometry"
)

// Offscreen is an in-memory surface. It keeps the last presented frame and
// lets callers inject pointer events as if they came from a window.
type Offscreen struct {
	id     string
	width  int
	height int
	origin geometry.Point2D

	mu      sync.Mutex
	frame   image.Image
	handler sliceview.PointerHandler
}

var _ sliceview.Surface = (*Offscreen)(nil)

// NewOffscreen creates an offscreen surface placed at the client origin.
func NewOffscreen(id string, width, height int) *Offscreen {
	return &Offscreen{id: id, width: width, height: height}
}

func (o *Offscreen) ID() string { return o.id }

func (o *Offscreen) Size() (int, int) { return o.width, o.height }

// MoveTo places the surface at (x, y) in client coordinates.
func (o *Offscreen) MoveTo(x, y float64) {
	o.origin = geometry.NewPoint2D(x, y)
}

func (o *Offscreen) BoundingBox() geometry.Rect {
	return geometry.NewRect(o.origin.X, o.origin.Y, float64(o.width), float64(o.height))
}

func (o *Offscreen) Present(img image.Image) {
	o.mu.Lock()
	o.frame = img
	o.mu.Unlock()
}

// Frame returns the last presented frame, or nil.
func (o *Offscreen) Frame() image.Image {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.frame
}

func (o *Offscreen) Bind(h sliceview.PointerHandler) {
	o.mu.Lock()
	o.handler = h
	o.mu.Unlock()
}

func (o *Offscreen) Unbind() {
	o.Bind(nil)
}

// Handler returns the bound pointer handler, or nil after Unbind.
func (o *Offscreen) Handler() sliceview.PointerHandler {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.handler
}

// OffscreenProvider creates and looks up offscreen surfaces.
type OffscreenProvider struct {
	mu       sync.Mutex
	surfaces map[string]*Offscreen
	next     int
}

var _ sliceview.SurfaceProvider = (*OffscreenProvider)(nil)

// NewOffscreenProvider creates an empty provider.
func NewOffscreenProvider() *OffscreenProvider {
	return &OffscreenProvider{surfaces: make(map[string]*Offscreen)}
}

// Register makes s available to Lookup.
func (p *OffscreenProvider) Register(s *Offscreen) {
	p.mu.Lock()
	p.surfaces[s.id] = s
	p.mu.Unlock()
}

func (p *OffscreenProvider) Lookup(id string) (sliceview.Surface, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.surfaces[id]
	if !ok {
		return nil, fmt.Errorf("no offscreen surface %q", id)
	}
	return s, nil
}

func (p *OffscreenProvider) Create(width, height int) (sliceview.Surface, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next++
	s := NewOffscreen(fmt.Sprintf("offscreen-%d", p.next), width, height)
	p.surfaces[s.id] = s
	return s, nil
}

// Get returns a registered offscreen surface by id.
func (p *OffscreenProvider) Get(id string) (*Offscreen, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.surfaces[id]
	return s, ok
}
