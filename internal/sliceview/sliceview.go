// Package sliceview implements a single slice pane: it converts pointer
// positions on its surface into volume coordinates and drives the shared
// cursor of the viewer it belongs to.
//
// A SliceView is not safe for concurrent use. Surfaces deliver events and
// the viewer runs draw cycles on the UI goroutine.
package sliceview

import (
	"errors"
	"fmt"

	"slice-viewer/internal/plane"
	"slice-viewer/internal/volume"
	"slice-viewer/pkg/geometry"
)

// zoomStep is the relative zoom-factor change of ZoomIn and ZoomOut.
const zoomStep = 0.1

var (
	// ErrConfiguration reports a missing or invalid construction input.
	ErrConfiguration = errors.New("slice view configuration error")
	// ErrDegenerateTransform reports a pane transform with a zero scale.
	ErrDegenerateTransform = errors.New("degenerate slice transform")
)

// Orchestrator owns the shared cursor, the zoom factor and the draw cycle.
type Orchestrator interface {
	// CurrentCoord returns the shared cursor position.
	CurrentCoord() geometry.Coord
	// ProposeCoord overwrites the listed axes of the shared cursor with the
	// values in c and signals that views changed. commit is false for
	// interim updates during a drag and true once the gesture settles.
	ProposeCoord(c geometry.Coord, axes []geometry.Axis, commit bool)
	// SliceTransform returns the volume-to-surface transform of view.
	SliceTransform(view *SliceView) (geometry.AffineTransform, error)

	ZoomFactor() float64
	SetZoomLocation(c geometry.Coord)
	SetZoomFactor(f float64)

	// OnDraw registers fn for every draw cycle and returns its cleanup.
	OnDraw(fn func()) (cleanup func())
	// DrawSlice renders view onto its surface.
	DrawSlice(view *SliceView) error
}

// State is the pointer interaction state.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Config holds the construction inputs of a SliceView.
type Config struct {
	// Surface picks an existing surface by id or a new one by size.
	Surface SurfaceSpec
	// Surfaces resolves Surface.
	Surfaces SurfaceProvider
	// Plane is required.
	Plane *plane.Descriptor
	// Crosshairs defaults to true when nil.
	Crosshairs *bool
	Volume     *volume.Volume
	// Viewer is required.
	Viewer Orchestrator
	// OnScroll, if set, is registered as a scroll listener.
	OnScroll Listener
}

// Bool returns a pointer to b, for optional Config fields.
func Bool(b bool) *bool {
	return &b
}

// SliceView is one on-screen pane showing a plane of the volume.
type SliceView struct {
	viewer     Orchestrator
	surface    Surface
	plane      plane.Descriptor
	crosshairs bool
	volume     *volume.Volume

	state     State
	listeners dispatcher

	cleanupDraw func()
	closed      bool
}

var _ PointerHandler = (*SliceView)(nil)

// New validates cfg, resolves the surface, subscribes to the viewer's draw
// cycle and binds pointer handlers on the surface.
func New(cfg Config) (*SliceView, error) {
	if cfg.Viewer == nil {
		return nil, fmt.Errorf("%w: viewer is required", ErrConfiguration)
	}
	if cfg.Plane == nil {
		return nil, fmt.Errorf("%w: plane is required", ErrConfiguration)
	}
	if err := cfg.Plane.Validate(); err != nil {
		return nil, err
	}

	surface, err := cfg.Surface.resolve(cfg.Surfaces)
	if err != nil {
		return nil, err
	}
	if surface == nil {
		return nil, fmt.Errorf("%w: provider returned no surface", ErrConfiguration)
	}

	v := &SliceView{
		viewer:     cfg.Viewer,
		surface:    surface,
		plane:      *cfg.Plane,
		crosshairs: true,
		volume:     cfg.Volume,
		state:      Idle,
	}
	if cfg.Crosshairs != nil {
		v.crosshairs = *cfg.Crosshairs
	}
	if cfg.OnScroll != nil {
		if _, err := v.listeners.add(Scroll, cfg.OnScroll); err != nil {
			return nil, err
		}
	}

	v.cleanupDraw = cfg.Viewer.OnDraw(v.onDrawCycle)
	surface.Bind(v)

	return v, nil
}

func (v *SliceView) onDrawCycle() {
	// Draw-cycle hooks have no caller to report to; the viewer logs draw errors.
	_ = v.Refresh()
}

// Close unsubscribes from the draw cycle and stops surface event delivery.
// It is safe to call more than once.
func (v *SliceView) Close() {
	if v.closed {
		return
	}
	v.closed = true
	if v.cleanupDraw != nil {
		v.cleanupDraw()
		v.cleanupDraw = nil
	}
	v.surface.Unbind()
}

// Closed reports whether Close has been called.
func (v *SliceView) Closed() bool {
	return v.closed
}

// Surface returns the drawable surface of the pane.
func (v *SliceView) Surface() Surface {
	return v.surface
}

// Plane returns the plane descriptor fixed at construction.
func (v *SliceView) Plane() plane.Descriptor {
	return v.plane
}

// Volume returns the volume currently shown, which may be nil.
func (v *SliceView) Volume() *volume.Volume {
	return v.volume
}

// Crosshairs reports whether the cross-hair overlay should be drawn.
func (v *SliceView) Crosshairs() bool {
	return v.crosshairs
}

// State returns the pointer interaction state.
func (v *SliceView) State() State {
	return v.state
}

// Refresh asks the viewer to redraw this pane.
func (v *SliceView) Refresh() error {
	if v.closed {
		return nil
	}
	return v.viewer.DrawSlice(v)
}

// SetCrosshairs stores the flag. It does not redraw; call Refresh.
func (v *SliceView) SetCrosshairs(on bool) {
	v.crosshairs = on
}

// ReplaceVolume swaps the displayed volume and redraws.
func (v *SliceView) ReplaceVolume(vol *volume.Volume) error {
	v.volume = vol
	return v.Refresh()
}

// UpdateVolumeField runs fn on the per-axis settings of the current volume,
// creating empty settings if none exist, then redraws.
func (v *SliceView) UpdateVolumeField(axis geometry.Axis, fn func(*volume.AxisSettings)) error {
	if !axis.Valid() {
		return fmt.Errorf("%w: axis %v", ErrConfiguration, axis)
	}
	if v.volume == nil {
		return fmt.Errorf("%w: %v pane has no volume", ErrConfiguration, v.plane)
	}
	fn(v.volume.Axis(axis))
	return v.Refresh()
}

// ZoomIn raises the viewer zoom factor by one step around the cursor.
func (v *SliceView) ZoomIn() {
	v.adjustZoom(zoomStep)
}

// ZoomOut lowers the viewer zoom factor by one step around the cursor.
func (v *SliceView) ZoomOut() {
	v.adjustZoom(-zoomStep)
}

// adjustZoom pins the zoom center to the cursor before changing the factor,
// so the new factor is applied around the just-set center.
func (v *SliceView) adjustZoom(amount float64) {
	next := v.viewer.ZoomFactor() + amount
	v.viewer.SetZoomLocation(v.viewer.CurrentCoord())
	v.viewer.SetZoomFactor(next)
}

// AddEventListener registers fn for kind. Listeners run in registration order.
func (v *SliceView) AddEventListener(kind Kind, fn Listener) (ListenerID, error) {
	return v.listeners.add(kind, fn)
}

// RemoveEventListener removes a listener. It reports whether one was removed.
func (v *SliceView) RemoveEventListener(kind Kind, id ListenerID) bool {
	return v.listeners.remove(kind, id)
}

// ListenerCount returns the number of listeners registered for kind.
func (v *SliceView) ListenerCount(kind Kind) int {
	return v.listeners.count(kind)
}

// Notify delivers ev to the listeners of kind. Every listener runs; their
// errors are joined into the result.
func (v *SliceView) Notify(kind Kind, ev Event) error {
	return v.listeners.notify(kind, ev, v)
}

// SurfaceToVolume converts a client-space pointer position into a volume
// coordinate. The plane's two axes come from the position; the constant axis
// is copied from the viewer's cursor.
func (v *SliceView) SurfaceToVolume(ev Event) (geometry.Coord, error) {
	box := v.surface.BoundingBox()
	localX := ev.ClientX - box.X
	localY := ev.ClientY - box.Y

	xf, err := v.viewer.SliceTransform(v)
	if err != nil {
		return geometry.Coord{}, err
	}
	if xf.Degenerate() {
		return geometry.Coord{}, fmt.Errorf("%w: %v pane scale (%g, %g)", ErrDegenerateTransform, v.plane, xf.A, xf.D)
	}

	// The -0.5 centers the result on the voxel under the pointer rather than its edge.
	x := (localX-xf.TX)/xf.A - 0.5
	y := (localY-xf.TY)/xf.D - 0.5

	return v.plane.Compose(x, y, v.viewer.CurrentCoord()), nil
}

// VolumeToSurface maps a volume coordinate to surface-local pixels; it is
// the inverse of SurfaceToVolume for the plane's two axes.
func (v *SliceView) VolumeToSurface(c geometry.Coord) (geometry.Point2D, error) {
	xf, err := v.viewer.SliceTransform(v)
	if err != nil {
		return geometry.Point2D{}, err
	}
	return ProjectToSurface(xf, v.plane, c)
}

// ProjectToSurface maps c onto a pane with transform xf and plane p.
func ProjectToSurface(xf geometry.AffineTransform, p plane.Descriptor, c geometry.Coord) (geometry.Point2D, error) {
	if xf.Degenerate() {
		return geometry.Point2D{}, fmt.Errorf("%w: %v pane scale (%g, %g)", ErrDegenerateTransform, p, xf.A, xf.D)
	}
	u, w := p.Project(c)
	return geometry.Point2D{
		X: (u+0.5)*xf.A + xf.TX,
		Y: (w+0.5)*xf.D + xf.TY,
	}, nil
}

// MouseDown starts a drag.
func (v *SliceView) MouseDown(ev Event) error {
	v.state = Dragging
	return v.Notify(MouseDown, ev)
}

// MouseMove moves the cursor while dragging, as an interim update.
func (v *SliceView) MouseMove(ev Event) error {
	var err error
	if v.state == Dragging {
		err = v.propose(ev, false)
	}
	return errors.Join(err, v.Notify(MouseMove, ev))
}

// MouseUp ends a drag and commits the final cursor position.
func (v *SliceView) MouseUp(ev Event) error {
	var err error
	if v.state == Dragging {
		v.state = Idle
		err = v.propose(ev, true)
	}
	return errors.Join(err, v.Notify(MouseUp, ev))
}

// MouseOut ends any drag without moving the cursor.
func (v *SliceView) MouseOut(ev Event) error {
	v.state = Idle
	return v.Notify(MouseOut, ev)
}

// Click notifies click listeners. It does not affect the drag state.
func (v *SliceView) Click(ev Event) error {
	return v.Notify(Click, ev)
}

// Scroll notifies scroll listeners. Zooming is left to them.
func (v *SliceView) Scroll(ev Event) error {
	return v.Notify(Scroll, ev)
}

// propose converts ev and hands it to the viewer. A failed conversion aborts
// the gesture and leaves the shared cursor untouched.
func (v *SliceView) propose(ev Event, commit bool) error {
	c, err := v.SurfaceToVolume(ev)
	if err != nil {
		v.state = Idle
		return err
	}
	v.viewer.ProposeCoord(c, []geometry.Axis{v.plane.X, v.plane.Y}, commit)
	return nil
}
