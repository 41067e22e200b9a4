package viewer

// EventType identifies different viewer events.
type EventType int

const (
	// EventCoordChanged fires for every cursor change, interim or final.
	EventCoordChanged EventType = iota
	// EventCoordCommitted fires once a gesture settles.
	EventCoordCommitted
	EventZoomChanged
	EventFrameChanged
	EventVolumeLoaded
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// On registers an event listener for the specified event type.
func (v *Viewer) On(event EventType, listener EventListener) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners[event] = append(v.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (v *Viewer) Emit(event EventType, data interface{}) {
	v.mu.RLock()
	listeners := v.listeners[event]
	v.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}
