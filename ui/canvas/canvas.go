// Package canvas provides the Fyne drawing surface of a slice pane.
package canvas

import (
	"fmt"
	"image"
	"log"
	"sync"

	"slice-viewer/internal/sliceview"
	"slice-viewer/pkg/geometry"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// SliceCanvas displays rendered slice frames and forwards pointer events
// to the bound slice view.
type SliceCanvas struct {
	widget.BaseWidget

	id      string
	minSize fyne.Size

	mu      sync.Mutex
	frame   image.Image
	handler sliceview.PointerHandler
	lastPos fyne.Position

	raster *fynecanvas.Raster

	// OnResize is called after the widget changes size.
	OnResize func()
}

var (
	_ desktop.Mouseable   = (*SliceCanvas)(nil)
	_ desktop.Hoverable   = (*SliceCanvas)(nil)
	_ fyne.Tappable       = (*SliceCanvas)(nil)
	_ fyne.Scrollable     = (*SliceCanvas)(nil)
	_ fyne.WidgetRenderer = (*sliceCanvasRenderer)(nil)
	_ sliceview.Surface   = canvasSurface{}
)

// NewSliceCanvas creates a canvas with the given id and minimum size.
func NewSliceCanvas(id string, width, height int) *SliceCanvas {
	sc := &SliceCanvas{
		id:      id,
		minSize: fyne.NewSize(float32(width), float32(height)),
	}
	sc.raster = fynecanvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = fynecanvas.ImageScalePixels
	sc.raster.SetMinSize(sc.minSize)
	sc.ExtendBaseWidget(sc)
	return sc
}

// ID returns the registry id of the canvas.
func (sc *SliceCanvas) ID() string {
	return sc.id
}

// Surface returns the canvas as a slice view surface.
func (sc *SliceCanvas) Surface() sliceview.Surface {
	return canvasSurface{sc}
}

// PixelSize returns the drawable size in pixels. Before the first layout it
// is the requested minimum size.
func (sc *SliceCanvas) PixelSize() (int, int) {
	s := sc.Size()
	if s.Width <= 0 || s.Height <= 0 {
		s = sc.minSize
	}
	return int(s.Width), int(s.Height)
}

// BoundingBox returns the canvas rectangle in window coordinates.
func (sc *SliceCanvas) BoundingBox() geometry.Rect {
	var pos fyne.Position
	if app := fyne.CurrentApp(); app != nil {
		pos = app.Driver().AbsolutePositionForObject(sc)
	}
	w, h := sc.PixelSize()
	return geometry.NewRect(float64(pos.X), float64(pos.Y), float64(w), float64(h))
}

// Present shows img on the next raster refresh.
func (sc *SliceCanvas) Present(img image.Image) {
	sc.mu.Lock()
	sc.frame = img
	sc.mu.Unlock()
	sc.raster.Refresh()
}

// Frame returns the last presented frame.
func (sc *SliceCanvas) Frame() image.Image {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.frame
}

// Bind routes pointer events to h.
func (sc *SliceCanvas) Bind(h sliceview.PointerHandler) {
	sc.mu.Lock()
	sc.handler = h
	sc.mu.Unlock()
}

// Unbind stops routing pointer events.
func (sc *SliceCanvas) Unbind() {
	sc.Bind(nil)
}

// Resize sets the widget size and reports the change.
func (sc *SliceCanvas) Resize(size fyne.Size) {
	old := sc.Size()
	sc.BaseWidget.Resize(size)
	if size != old && sc.OnResize != nil {
		sc.OnResize()
	}
}

// MinSize returns the requested surface size.
func (sc *SliceCanvas) MinSize() fyne.Size {
	return sc.minSize
}

func (sc *SliceCanvas) draw(w, h int) image.Image {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.frame == nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return sc.frame
}

// dispatch delivers ev to the bound handler and logs any error, since Fyne
// event callbacks cannot return one.
func (sc *SliceCanvas) dispatch(ev sliceview.Event, call func(sliceview.PointerHandler, sliceview.Event) error) {
	sc.mu.Lock()
	h := sc.handler
	sc.mu.Unlock()
	if h == nil {
		return
	}
	if err := call(h, ev); err != nil {
		log.Printf("canvas %s: %v: %v", sc.id, ev.Kind, err)
	}
}

func (sc *SliceCanvas) pointerEvent(kind sliceview.Kind, pos fyne.Position, button desktop.MouseButton) sliceview.Event {
	sc.mu.Lock()
	sc.lastPos = pos
	sc.mu.Unlock()
	return sliceview.Event{
		Kind:    kind,
		ClientX: float64(pos.X),
		ClientY: float64(pos.Y),
		Button:  toButton(button),
	}
}

func toButton(b desktop.MouseButton) sliceview.Button {
	switch {
	case b&desktop.MouseButtonPrimary != 0:
		return sliceview.ButtonPrimary
	case b&desktop.MouseButtonSecondary != 0:
		return sliceview.ButtonSecondary
	case b&desktop.MouseButtonTertiary != 0:
		return sliceview.ButtonTertiary
	}
	return sliceview.ButtonNone
}

// MouseDown implements desktop.Mouseable.
func (sc *SliceCanvas) MouseDown(ev *desktop.MouseEvent) {
	sc.dispatch(sc.pointerEvent(sliceview.MouseDown, ev.AbsolutePosition, ev.Button), sliceview.PointerHandler.MouseDown)
}

// MouseUp implements desktop.Mouseable.
func (sc *SliceCanvas) MouseUp(ev *desktop.MouseEvent) {
	sc.dispatch(sc.pointerEvent(sliceview.MouseUp, ev.AbsolutePosition, ev.Button), sliceview.PointerHandler.MouseUp)
}

// MouseIn implements desktop.Hoverable.
func (sc *SliceCanvas) MouseIn(ev *desktop.MouseEvent) {
	sc.mu.Lock()
	sc.lastPos = ev.AbsolutePosition
	sc.mu.Unlock()
}

// MouseMoved implements desktop.Hoverable.
func (sc *SliceCanvas) MouseMoved(ev *desktop.MouseEvent) {
	sc.dispatch(sc.pointerEvent(sliceview.MouseMove, ev.AbsolutePosition, ev.Button), sliceview.PointerHandler.MouseMove)
}

// MouseOut implements desktop.Hoverable. Fyne gives no position, so the last
// known one is reported.
func (sc *SliceCanvas) MouseOut() {
	sc.mu.Lock()
	pos := sc.lastPos
	sc.mu.Unlock()
	sc.dispatch(sc.pointerEvent(sliceview.MouseOut, pos, 0), sliceview.PointerHandler.MouseOut)
}

// Tapped implements fyne.Tappable.
func (sc *SliceCanvas) Tapped(ev *fyne.PointEvent) {
	sc.dispatch(sc.pointerEvent(sliceview.Click, ev.AbsolutePosition, desktop.MouseButtonPrimary), sliceview.PointerHandler.Click)
}

// Scrolled implements fyne.Scrollable.
func (sc *SliceCanvas) Scrolled(ev *fyne.ScrollEvent) {
	e := sc.pointerEvent(sliceview.Scroll, ev.AbsolutePosition, 0)
	e.DX = float64(ev.Scrolled.DX)
	e.DY = float64(ev.Scrolled.DY)
	sc.dispatch(e, sliceview.PointerHandler.Scroll)
}

// canvasSurface adapts SliceCanvas to sliceview.Surface, whose Size differs
// from the one fyne.CanvasObject requires.
type canvasSurface struct {
	*SliceCanvas
}

func (s canvasSurface) Size() (int, int) {
	return s.PixelSize()
}

// CreateRenderer implements fyne.Widget.
func (sc *SliceCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &sliceCanvasRenderer{canvas: sc}
}

type sliceCanvasRenderer struct {
	canvas *SliceCanvas
}

func (r *sliceCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
}

func (r *sliceCanvasRenderer) MinSize() fyne.Size {
	return r.canvas.minSize
}

func (r *sliceCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *sliceCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *sliceCanvasRenderer) Destroy() {}

// Registry creates slice canvases and finds them by id.
type Registry struct {
	mu       sync.Mutex
	canvases map[string]*SliceCanvas
	next     int
}

var _ sliceview.SurfaceProvider = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{canvases: make(map[string]*SliceCanvas)}
}

// Add registers an existing canvas under its id.
func (r *Registry) Add(sc *SliceCanvas) {
	r.mu.Lock()
	r.canvases[sc.id] = sc
	r.mu.Unlock()
}

// Lookup implements sliceview.SurfaceProvider.
func (r *Registry) Lookup(id string) (sliceview.Surface, error) {
	sc, ok := r.Get(id)
	if !ok {
		return nil, fmt.Errorf("no canvas %q", id)
	}
	return sc.Surface(), nil
}

// Create implements sliceview.SurfaceProvider.
func (r *Registry) Create(width, height int) (sliceview.Surface, error) {
	r.mu.Lock()
	r.next++
	id := fmt.Sprintf("slice-canvas-%d", r.next)
	r.mu.Unlock()

	sc := NewSliceCanvas(id, width, height)
	r.Add(sc)
	return sc.Surface(), nil
}

// Get returns the canvas registered under id.
func (r *Registry) Get(id string) (*SliceCanvas, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.canvases[id]
	return sc, ok
}

// Remove forgets the canvas registered under id.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.canvases, id)
	r.mu.Unlock()
}
