// Package render declares what the overlay needs from an external 3D engine.
//
// The overlay RECEIVES the graphics context from the host map, it never
// creates one: the engine is bound to the host's context and canvas, and
// both the host and the engine draw into the same framebuffer.
package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gpucontext"
)

// GraphicsContext is the GPU context shared between the host map and the
// overlay. During its render call the overlay may change any state of it,
// but it must leave it in a state the host can resume from (see Engine.ResetState).
type GraphicsContext = gpucontext.DeviceProvider

// Canvas is the drawing surface of the host map
type Canvas interface {
	Size() (width, height int)
	PixelRatio() float64
}

// EngineOptions configures engine creation
type EngineOptions struct {
	Antialias          bool
	AdaptToDeviceRatio bool
}

// SceneOptions configures scene creation. The host's content must stay
// visible around the overlay, so scenes never clear the framebuffer.
type SceneOptions struct {
	UseRightHandedSystem     bool
	Transparent              bool
	AutoClear                bool
	AutoClearDepthAndStencil bool
}

// OverlaySceneOptions returns transparent, manual-clear scene options
func OverlaySceneOptions(useRightHandedSystem bool) SceneOptions {
	return SceneOptions{
		UseRightHandedSystem: useRightHandedSystem,
		Transparent:          true,
	}
}

// Factory creates engines bound to an existing graphics context
type Factory interface {
	NewEngine(gc GraphicsContext, canvas Canvas, opts EngineOptions) (Engine, error)
}

// Engine is a rendering engine instance. It owns native resources tied to
// the graphics context and must be disposed before another one is created.
type Engine interface {
	NewScene(opts SceneOptions) (Scene, error)
	// ResetState drops cached GPU state (bound textures, blend modes, programs)
	// so that the host's next draw calls are not affected by the overlay
	ResetState() error
	Dispose()
}

// Scene is the root of the engine's scene graph
type Scene interface {
	NewCamera(name string) Camera
	SetActiveCamera(camera Camera)
	AddDefaultLighting()
	Render() error
	Dispose()
}

// Camera is a scene camera whose projection can be frozen for one frame
type Camera interface {
	Name() string
	// FreezeProjectionMatrix installs m as the camera's complete
	// view-projection, bypassing the camera's own position and orientation
	FreezeProjectionMatrix(m mgl64.Mat4)
}
