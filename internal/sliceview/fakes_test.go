package sliceview

import (
	"errors"
	"image"

	"slice-viewer/pkg/geometry"
)

type proposal struct {
	coord  geometry.Coord
	axes   []geometry.Axis
	commit bool
}

// fakeViewer records every orchestrator call a SliceView makes.
type fakeViewer struct {
	coord     geometry.Coord
	transform geometry.AffineTransform
	xfErr     error
	zoom      float64

	proposals []proposal
	calls     []string
	draws     int
	drawFns   map[int]func()
	nextDraw  int
}

func newFakeViewer() *fakeViewer {
	return &fakeViewer{
		transform: geometry.Identity(),
		zoom:      1,
		drawFns:   make(map[int]func()),
	}
}

func (f *fakeViewer) CurrentCoord() geometry.Coord { return f.coord }

func (f *fakeViewer) ProposeCoord(c geometry.Coord, axes []geometry.Axis, commit bool) {
	f.proposals = append(f.proposals, proposal{coord: c, axes: axes, commit: commit})
	f.coord = f.coord.Merge(c, axes...)
}

func (f *fakeViewer) SliceTransform(*SliceView) (geometry.AffineTransform, error) {
	return f.transform, f.xfErr
}

func (f *fakeViewer) ZoomFactor() float64 {
	f.calls = append(f.calls, "ZoomFactor")
	return f.zoom
}

func (f *fakeViewer) SetZoomLocation(geometry.Coord) {
	f.calls = append(f.calls, "SetZoomLocation")
}

func (f *fakeViewer) SetZoomFactor(z float64) {
	f.calls = append(f.calls, "SetZoomFactor")
	f.zoom = z
}

func (f *fakeViewer) OnDraw(fn func()) func() {
	f.nextDraw++
	id := f.nextDraw
	f.drawFns[id] = fn
	return func() { delete(f.drawFns, id) }
}

func (f *fakeViewer) DrawSlice(*SliceView) error {
	f.draws++
	return nil
}

func (f *fakeViewer) drawCycle() {
	for _, fn := range f.drawFns {
		fn()
	}
}

func (f *fakeViewer) commits() (interim, final int) {
	for _, p := range f.proposals {
		if p.commit {
			final++
		} else {
			interim++
		}
	}
	return interim, final
}

type fakeSurface struct {
	id      string
	w, h    int
	box     geometry.Rect
	handler PointerHandler
	frames  int
}

func (s *fakeSurface) ID() string                 { return s.id }
func (s *fakeSurface) Size() (int, int)           { return s.w, s.h }
func (s *fakeSurface) BoundingBox() geometry.Rect { return s.box }
func (s *fakeSurface) Present(image.Image)        { s.frames++ }
func (s *fakeSurface) Bind(h PointerHandler)      { s.handler = h }
func (s *fakeSurface) Unbind()                    { s.handler = nil }

type fakeProvider struct {
	surfaces map[string]*fakeSurface
	created  []*fakeSurface
}

func (p *fakeProvider) Lookup(id string) (Surface, error) {
	s, ok := p.surfaces[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return s, nil
}

func (p *fakeProvider) Create(w, h int) (Surface, error) {
	s := &fakeSurface{w: w, h: h, box: geometry.NewRect(0, 0, float64(w), float64(h))}
	p.created = append(p.created, s)
	return s, nil
}
