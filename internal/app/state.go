// Package app provides application lifecycle management: the loaded volume,
// the open slice panes and the viewer they share.
package app

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"slice-viewer/internal/config"
	"slice-viewer/internal/plane"
	"slice-viewer/internal/sliceview"
	"slice-viewer/internal/viewer"
	"slice-viewer/internal/volume"
	"slice-viewer/pkg/geometry"
)

// ErrNoPanes is returned by operations that need at least one open pane.
var ErrNoPanes = errors.New("no panes open")

// State holds the application state: configuration, the shared viewer, the
// loaded volume and the open panes.
type State struct {
	mu sync.RWMutex
	// serial orders pane events against volume swaps and other pane
	// mutations arriving from other goroutines.
	serial sync.Mutex

	Config *config.Config
	Viewer *viewer.Viewer

	volume     *volume.Volume
	volumePath string
	panes      []*sliceview.SliceView
	crosshairs bool
}

// NewState creates application state from cfg. A nil cfg uses the defaults.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	return &State{
		Config:     cfg,
		Viewer:     viewer.New(cfg.Viewer),
		crosshairs: cfg.Panes.Crosshairs,
	}
}

// Do runs fn while no pane event or pane mutation is in progress. fn must
// not call back into Do or into the State methods that mutate panes.
func (s *State) Do(fn func()) {
	s.serial.Lock()
	defer s.serial.Unlock()
	fn()
}

// serialHandler delivers surface events to a pane one at a time under the
// State's serial lock.
type serialHandler struct {
	state *State
	view  *sliceview.SliceView
}

func (h serialHandler) deliver(fn func(sliceview.Event) error, ev sliceview.Event) error {
	h.state.serial.Lock()
	defer h.state.serial.Unlock()
	if h.view.Closed() {
		return nil
	}
	return fn(ev)
}

func (h serialHandler) MouseDown(ev sliceview.Event) error { return h.deliver(h.view.MouseDown, ev) }
func (h serialHandler) MouseMove(ev sliceview.Event) error { return h.deliver(h.view.MouseMove, ev) }
func (h serialHandler) MouseUp(ev sliceview.Event) error   { return h.deliver(h.view.MouseUp, ev) }
func (h serialHandler) MouseOut(ev sliceview.Event) error  { return h.deliver(h.view.MouseOut, ev) }
func (h serialHandler) Click(ev sliceview.Event) error     { return h.deliver(h.view.Click, ev) }
func (h serialHandler) Scroll(ev sliceview.Event) error    { return h.deliver(h.view.Scroll, ev) }

// ScrollZoom zooms the pane in when scrolling up and out when scrolling down.
func ScrollZoom(ev sliceview.Event, view *sliceview.SliceView) error {
	switch {
	case ev.DY > 0:
		view.ZoomIn()
	case ev.DY < 0:
		view.ZoomOut()
	}
	return nil
}

// OpenPane creates a slice pane on the given surface showing plane p.
func (s *State) OpenPane(spec sliceview.SurfaceSpec, surfaces sliceview.SurfaceProvider, p plane.Descriptor) (*sliceview.SliceView, error) {
	s.serial.Lock()
	defer s.serial.Unlock()

	s.mu.RLock()
	vol := s.volume
	crosshairs := s.crosshairs
	s.mu.RUnlock()

	view, err := sliceview.New(sliceview.Config{
		Surface:    spec,
		Surfaces:   surfaces,
		Plane:      &p,
		Crosshairs: sliceview.Bool(crosshairs),
		Volume:     vol,
		Viewer:     s.Viewer,
		OnScroll:   ScrollZoom,
	})
	if err != nil {
		return nil, fmt.Errorf("open %v pane: %w", p, err)
	}
	view.Surface().Bind(serialHandler{state: s, view: view})

	s.mu.Lock()
	s.panes = append(s.panes, view)
	s.mu.Unlock()
	return view, nil
}

// OpenConfiguredPanes opens one pane per configured plane on new surfaces.
func (s *State) OpenConfiguredPanes(surfaces sliceview.SurfaceProvider) ([]*sliceview.SliceView, error) {
	var views []*sliceview.SliceView
	for _, name := range s.Config.Panes.Planes {
		p, err := plane.ByName(name)
		if err != nil {
			return views, err
		}
		spec := sliceview.NewSurface(s.Config.Panes.Width, s.Config.Panes.Height)
		view, err := s.OpenPane(spec, surfaces, p)
		if err != nil {
			return views, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Panes returns the open panes in the order they were opened.
func (s *State) Panes() []*sliceview.SliceView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*sliceview.SliceView, len(s.panes))
	copy(out, s.panes)
	return out
}

// ClosePane tears view down and forgets it.
func (s *State) ClosePane(view *sliceview.SliceView) {
	s.mu.Lock()
	for i, p := range s.panes {
		if p == view {
			s.panes = append(s.panes[:i:i], s.panes[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.serial.Lock()
	view.Close()
	s.serial.Unlock()
	s.Viewer.Forget(view)
}

// Close tears down every pane.
func (s *State) Close() {
	for _, view := range s.Panes() {
		s.ClosePane(view)
	}
}

// Volume returns the loaded volume, or nil.
func (s *State) Volume() *volume.Volume {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// VolumePath returns where the loaded volume came from.
func (s *State) VolumePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volumePath
}

// LoadVolume reads a slice stack from dir, applies the configured voxel size
// and axis labels, and shows it in every pane.
func (s *State) LoadVolume(dir string) error {
	vol, err := volume.LoadDir(dir)
	if err != nil {
		return err
	}
	if vs := s.Config.Volume.VoxelSize; vs[0] > 0 && vs[1] > 0 && vs[2] > 0 {
		vol.VoxelSize = vs
	}
	for _, axis := range geometry.Axes {
		if label := s.Config.Volume.Labels[axis]; label != "" {
			vol.Axis(axis).Label = label
		}
	}
	return s.SetVolume(vol, dir)
}

// SetVolume replaces the volume of every pane and centers the cursor in it.
// Every pane is updated even if some fail to draw. It is safe to call from
// any goroutine; the swap waits for in-flight pane events.
func (s *State) SetVolume(vol *volume.Volume, path string) error {
	var errs []error
	s.Do(func() {
		s.mu.Lock()
		s.volume = vol
		s.volumePath = path
		s.mu.Unlock()

		for _, view := range s.Panes() {
			if err := view.ReplaceVolume(vol); err != nil {
				errs = append(errs, err)
			}
		}
		if vol != nil {
			s.Viewer.SetZoomLocation(vol.Center())
			s.Viewer.SetCurrentCoord(vol.Center())
		}
	})

	if vol != nil {
		log.Printf("Loaded %dx%dx%d volume (%d frames) from %s", vol.Width, vol.Height, vol.Depth, vol.Frames, path)
	}
	s.Viewer.Emit(viewer.EventVolumeLoaded, path)
	return errors.Join(errs...)
}

// Crosshairs reports whether panes draw cross-hairs.
func (s *State) Crosshairs() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.crosshairs
}

// SetCrosshairs turns cross-hairs on or off in every pane and redraws.
func (s *State) SetCrosshairs(on bool) {
	s.mu.Lock()
	s.crosshairs = on
	s.mu.Unlock()

	s.Do(func() {
		for _, view := range s.Panes() {
			view.SetCrosshairs(on)
		}
		s.Viewer.RequestDraw()
	})
}

// FlipAxis mirrors axis a on screen. The setting lives on the shared volume,
// so one pane applies it and the others follow on the redraw.
func (s *State) FlipAxis(a geometry.Axis) error {
	panes := s.Panes()
	if len(panes) == 0 {
		return ErrNoPanes
	}
	var err error
	s.Do(func() {
		err = panes[0].UpdateVolumeField(a, func(st *volume.AxisSettings) {
			st.Flip = !st.Flip
		})
		if err == nil {
			s.Viewer.RequestDraw()
		}
	})
	return err
}
