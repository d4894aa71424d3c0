package geolayer

import (
	"github.com/akmonengine/geolayer/geo"
	"github.com/akmonengine/geolayer/orient"
	"github.com/akmonengine/geolayer/render"
)

const (
	ON_ATTACH EventType = iota
	ON_DETACH
	ON_ANCHOR_CHANGE
	ON_UP_AXIS_CHANGE
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// AttachEvent is sent once the engine, scene and camera exist
type AttachEvent struct {
	Scene  render.Scene
	Camera render.Camera
}

func (e AttachEvent) Type() EventType { return ON_ATTACH }

// DetachEvent is sent after the overlay released its engine and scene
type DetachEvent struct{}

func (e DetachEvent) Type() EventType { return ON_DETACH }

type AnchorChangeEvent struct {
	Previous geo.Point
	Current  geo.Point
}

func (e AnchorChangeEvent) Type() EventType { return ON_ANCHOR_CHANGE }

type UpAxisChangeEvent struct {
	Correction orient.Correction
}

func (e UpAxisChangeEvent) Type() EventType { return ON_UP_AXIS_CHANGE }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager. Listeners run on the host's render loop, at the end of the
// lifecycle call that produced the event. It is not safe for concurrent use:
// subscribe before the overlay is added to a map.
type Events struct {
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 8),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	// listeners may trigger lifecycle calls that emit again
	pending := e.buffer
	e.buffer = nil

	for _, event := range pending {
		for _, listener := range e.listeners[event.Type()] {
			listener(event)
		}
	}

	if e.buffer == nil {
		e.buffer = pending[:0]
	}
}
