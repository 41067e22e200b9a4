// Package viewer coordinates slice panes: it owns the shared cursor, the zoom
// state and the draw cycle that every pane observes.
package viewer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"sync"

	"slice-viewer/internal/config"
	"slice-viewer/internal/render"
	"slice-viewer/internal/sliceview"
	"slice-viewer/pkg/colorutil"
	"slice-viewer/pkg/geometry"
)

// ErrNoVolume is returned when a pane has no volume to map coordinates into.
var ErrNoVolume = errors.New("pane has no volume")

type drawHook struct {
	id int
	fn func()
}

// Viewer is the single writer of the shared cursor and zoom state.
type Viewer struct {
	mu sync.RWMutex

	zoomMin, zoomMax float64
	crosshairColor   color.RGBA
	background       color.RGBA

	coord        geometry.Coord
	frame        int
	zoomFactor   float64
	zoomLocation geometry.Coord
	pan          map[*sliceview.SliceView]geometry.Point2D

	hooks    []drawHook
	nextHook int
	drawing  bool
	redraw   bool

	listeners map[EventType][]EventListener
}

var _ sliceview.Orchestrator = (*Viewer)(nil)

// New creates a viewer with zoom factor 1.
func New(cfg config.Viewer) *Viewer {
	if cfg.ZoomMin <= 0 {
		cfg.ZoomMin = 1
	}
	if cfg.ZoomMax < cfg.ZoomMin {
		cfg.ZoomMax = cfg.ZoomMin
	}
	return &Viewer{
		zoomMin:        cfg.ZoomMin,
		zoomMax:        cfg.ZoomMax,
		crosshairColor: colorutil.ParseHexOr(cfg.CrosshairColor, colorutil.Gold),
		background:     colorutil.ParseHexOr(cfg.Background, colorutil.Black),
		zoomFactor:     clampZoom(1, cfg.ZoomMin, cfg.ZoomMax),
		pan:            make(map[*sliceview.SliceView]geometry.Point2D),
		listeners:      make(map[EventType][]EventListener),
	}
}

// CurrentCoord returns the shared cursor.
func (v *Viewer) CurrentCoord() geometry.Coord {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.coord
}

// SetCurrentCoord replaces the cursor and commits the change.
func (v *Viewer) SetCurrentCoord(c geometry.Coord) {
	v.mu.Lock()
	v.coord = c
	v.mu.Unlock()
	v.ViewsChanged(true)
}

// ProposeCoord overwrites the given axes of the cursor with c and signals
// that views changed. The cursor is updated before any listener runs.
func (v *Viewer) ProposeCoord(c geometry.Coord, axes []geometry.Axis, commit bool) {
	v.mu.Lock()
	v.coord = v.coord.Merge(c, axes...)
	v.mu.Unlock()
	v.ViewsChanged(commit)
}

// ViewsChanged notifies listeners of the cursor and redraws every pane.
// Interim changes (commit=false) come from drags in progress; commits mark
// the settled position.
func (v *Viewer) ViewsChanged(commit bool) {
	coord := v.CurrentCoord()
	v.Emit(EventCoordChanged, coord)
	v.RequestDraw()
	if commit {
		v.Emit(EventCoordCommitted, coord)
	}
}

// ZoomFactor returns the zoom factor; 1 fits the slice to its pane.
func (v *Viewer) ZoomFactor() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoomFactor
}

// SetZoomFactor clamps f to the configured range, then redraws.
func (v *Viewer) SetZoomFactor(f float64) {
	v.mu.Lock()
	v.zoomFactor = clampZoom(f, v.zoomMin, v.zoomMax)
	f = v.zoomFactor
	v.mu.Unlock()

	v.Emit(EventZoomChanged, f)
	v.RequestDraw()
}

// ZoomLocation returns the volume position zooming is centered on.
func (v *Viewer) ZoomLocation() geometry.Coord {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoomLocation
}

// SetZoomLocation sets the zoom center. It takes effect on the next draw.
func (v *Viewer) SetZoomLocation(c geometry.Coord) {
	v.mu.Lock()
	v.zoomLocation = c
	v.mu.Unlock()
}

// Pan shifts one pane by (dx, dy) surface pixels.
func (v *Viewer) Pan(view *sliceview.SliceView, dx, dy float64) {
	v.mu.Lock()
	v.pan[view] = v.pan[view].Add(geometry.NewPoint2D(dx, dy))
	v.mu.Unlock()
	v.RequestDraw()
}

// Forget drops per-pane state kept for view.
func (v *Viewer) Forget(view *sliceview.SliceView) {
	v.mu.Lock()
	delete(v.pan, view)
	v.mu.Unlock()
}

// ResetView clears zoom and pan on every pane.
func (v *Viewer) ResetView() {
	v.mu.Lock()
	v.zoomFactor = clampZoom(1, v.zoomMin, v.zoomMax)
	v.pan = make(map[*sliceview.SliceView]geometry.Point2D)
	f := v.zoomFactor
	v.mu.Unlock()

	v.Emit(EventZoomChanged, f)
	v.RequestDraw()
}

// Frame returns the time frame shown for 4D volumes.
func (v *Viewer) Frame() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.frame
}

// SetFrame selects the time frame and redraws. Negative values are clamped to 0.
func (v *Viewer) SetFrame(frame int) {
	if frame < 0 {
		frame = 0
	}
	v.mu.Lock()
	v.frame = frame
	v.mu.Unlock()

	v.Emit(EventFrameChanged, frame)
	v.RequestDraw()
}

// OnDraw registers fn to run on every draw cycle. The returned cleanup
// removes it.
func (v *Viewer) OnDraw(fn func()) func() {
	v.mu.Lock()
	v.nextHook++
	id := v.nextHook
	v.hooks = append(v.hooks, drawHook{id: id, fn: fn})
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			for i, h := range v.hooks {
				if h.id == id {
					v.hooks = append(v.hooks[:i:i], v.hooks[i+1:]...)
					return
				}
			}
		})
	}
}

// DrawHooks returns the number of registered draw-cycle hooks.
func (v *Viewer) DrawHooks() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.hooks)
}

// RequestDraw runs every draw hook in registration order. A request made
// while a cycle is running marks the cycle dirty, and the running cycle
// repeats once so the latest state is drawn.
func (v *Viewer) RequestDraw() {
	v.mu.Lock()
	if v.drawing {
		v.redraw = true
		v.mu.Unlock()
		return
	}
	v.drawing = true

	for {
		hooks := make([]drawHook, len(v.hooks))
		copy(hooks, v.hooks)
		v.redraw = false
		v.mu.Unlock()

		v.runHooks(hooks)

		v.mu.Lock()
		if !v.redraw {
			break
		}
	}
	v.drawing = false
	v.mu.Unlock()
}

func (v *Viewer) runHooks(hooks []drawHook) {
	defer func() {
		if r := recover(); r != nil {
			v.mu.Lock()
			v.drawing, v.redraw = false, false
			v.mu.Unlock()
			panic(r)
		}
	}()
	for _, h := range hooks {
		h.fn()
	}
}

// DrawSlice renders view with the current cursor and presents the frame.
func (v *Viewer) DrawSlice(view *sliceview.SliceView) error {
	surface := view.Surface()
	w, h := surface.Size()
	if w <= 0 || h <= 0 {
		return nil
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))

	params := render.Params{
		Volume:         view.Volume(),
		Plane:          view.Plane(),
		Coord:          v.CurrentCoord(),
		Frame:          v.Frame(),
		Crosshairs:     view.Crosshairs(),
		CrosshairColor: v.crosshairColor,
		Background:     v.background,
	}
	if params.Volume != nil {
		xf, err := v.SliceTransform(view)
		if err != nil {
			log.Printf("viewer: draw %v pane: %v", view.Plane(), err)
			return err
		}
		params.Transform = xf
		if n := params.Volume.Frames; n > 0 && params.Frame >= n {
			params.Frame = n - 1
		}
	}

	if err := render.Slice(dst, params); err != nil {
		log.Printf("viewer: draw %v pane: %v", view.Plane(), err)
		return fmt.Errorf("draw %v pane: %w", view.Plane(), err)
	}
	surface.Present(dst)
	return nil
}

func clampZoom(f, lo, hi float64) float64 {
	if math.IsNaN(f) {
		return lo
	}
	return math.Max(lo, math.Min(hi, f))
}
