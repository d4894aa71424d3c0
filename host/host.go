// Package host declares the part of the host map the overlay relies on.
package host

import "github.com/akmonengine/geolayer/render"

const (
	// LayerTypeCustom is the layer type under which the overlay registers
	LayerTypeCustom = "custom"
	// RenderingMode3D asks the host to share its depth buffer with the layer
	RenderingMode3D = "3d"
)

// Map is a host map handle. Credentials the host needs are given to whatever
// constructs the Map, never read from process-wide state.
type Map interface {
	// TriggerRepaint schedules another frame, so that the layer's render
	// callback is invoked again even if the map camera did not move
	TriggerRepaint()
	Canvas() render.Canvas
}

// CustomLayer is the callback contract the host drives. OnAdd always runs
// before the first Render, and Render calls never overlap.
type CustomLayer interface {
	ID() string
	Type() string
	RenderingMode() string
	OnAdd(m Map, gc render.GraphicsContext) error
	Render(gc render.GraphicsContext, matrix []float64)
	OnRemove(m Map)
}
