package sliceview

import (
	"errors"
	"fmt"
)

// Kind identifies a pointer or scroll event delivered to a slice view.
type Kind int

const (
	MouseDown Kind = iota
	MouseMove
	MouseUp
	MouseOut
	Click
	Scroll

	numKinds
)

// Kinds lists every event kind in declaration order.
var Kinds = [numKinds]Kind{MouseDown, MouseMove, MouseUp, MouseOut, Click, Scroll}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= MouseDown && k < numKinds
}

func (k Kind) String() string {
	switch k {
	case MouseDown:
		return "mousedown"
	case MouseMove:
		return "mousemove"
	case MouseUp:
		return "mouseup"
	case MouseOut:
		return "mouseout"
	case Click:
		return "click"
	case Scroll:
		return "scroll"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Button identifies the pointer button of an event.
type Button int

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonTertiary
)

// Event is a raw pointer or scroll event in client coordinates.
type Event struct {
	Kind    Kind
	ClientX float64
	ClientY float64
	Button  Button

	// Scroll deltas, zero for pointer events.
	DX float64
	DY float64
}

// Listener receives events from a slice view.
type Listener func(ev Event, view *SliceView) error

// ListenerID identifies a registered listener for removal.
type ListenerID uint64

type subscription struct {
	id ListenerID
	fn Listener
}

// dispatcher holds one ordered subscriber list per event kind.
// It is not safe for concurrent use; all calls happen on the UI goroutine.
type dispatcher struct {
	next  ListenerID
	lists [numKinds][]subscription
}

func (d *dispatcher) add(kind Kind, fn Listener) (ListenerID, error) {
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: unknown event kind %v", ErrConfiguration, kind)
	}
	if fn == nil {
		return 0, fmt.Errorf("%w: nil %v listener", ErrConfiguration, kind)
	}
	d.next++
	d.lists[kind] = append(d.lists[kind], subscription{id: d.next, fn: fn})
	return d.next, nil
}

func (d *dispatcher) remove(kind Kind, id ListenerID) bool {
	if !kind.Valid() {
		return false
	}
	subs := d.lists[kind]
	for i, s := range subs {
		if s.id == id {
			// Copy so a notify loop already ranging over the old slice is unaffected.
			next := make([]subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			d.lists[kind] = next
			return true
		}
	}
	return false
}

func (d *dispatcher) count(kind Kind) int {
	if !kind.Valid() {
		return 0
	}
	return len(d.lists[kind])
}

// notify calls every listener for kind in registration order. A failing
// listener does not stop the others; all errors are joined.
func (d *dispatcher) notify(kind Kind, ev Event, view *SliceView) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown event kind %v", ErrConfiguration, kind)
	}
	ev.Kind = kind

	var errs []error
	for _, s := range d.lists[kind] {
		if err := s.fn(ev, view); err != nil {
			errs = append(errs, fmt.Errorf("%v listener %d: %w", kind, s.id, err))
		}
	}
	return errors.Join(errs...)
}
