package geolayer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/akmonengine/geolayer/frame"
	"github.com/akmonengine/geolayer/geo"
	"github.com/akmonengine/geolayer/host"
	"github.com/akmonengine/geolayer/orient"
	"github.com/akmonengine/geolayer/render"
	"github.com/go-gl/mathgl/mgl64"
)

// CameraName is the name of the camera created when Options.Camera is nil
const CameraName = "geolayer-camera"

var (
	// ErrNilMap is returned by OnAdd when the host gives no map handle
	ErrNilMap = errors.New("geolayer: nil host map")

	// ErrNilFactory is returned by OnAdd when the overlay has no engine factory
	ErrNilFactory = errors.New("geolayer: nil engine factory")

	// ErrNilGraphicsContext is returned by OnAdd when the host gives no
	// graphics context, or one without a device or queue
	ErrNilGraphicsContext = errors.New("geolayer: nil graphics context")

	// ErrEngineCreation wraps failures of the external engine while attaching
	ErrEngineCreation = errors.New("geolayer: engine creation failed")
)

var _ host.CustomLayer = (*Overlay)(nil)

// State of the overlay lifecycle
type State uint8

const (
	// StateUninitialized overlays hold their configuration but no engine
	StateUninitialized State = iota
	// StateAttached overlays own an engine, a scene and a camera and render every frame
	StateAttached
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAttached:
		return "attached"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Overlay is a host map custom layer drawing an external engine's scene,
// georeferenced at an anchor and synchronized with the map camera every frame.
//
// Lifecycle calls (OnAdd, Render, OnRemove) and the setters run on the host's
// render loop. WaitForSceneInit and the conversion methods may be called
// from other goroutines as long as the anchor and up axis are not changed
// concurrently.
type Overlay struct {
	options Options
	factory render.Factory

	anchor      geo.Point
	anchorState geo.AnchorState
	correction  orient.Correction

	m host.Map

	// mu guards the render context, the ready channel and the last frame
	mu        sync.RWMutex
	engine    render.Engine
	scene     render.Scene
	camera    render.Camera
	ready     chan struct{}
	lastFrame mgl64.Mat4
	frames    uint64

	Events Events
}

// New creates an uninitialized overlay. The engine is created by factory
// once the host adds the layer. The zero Options is valid: every field's zero
// value is its default.
func New(opts Options, factory render.Factory) *Overlay {
	opts.Resolve()

	o := &Overlay{
		options:     opts,
		factory:     factory,
		anchor:      opts.Anchor,
		anchorState: geo.NewAnchorState(opts.Anchor),
		ready:       make(chan struct{}),
		Events:      NewEvents(),
	}
	o.correction = o.resolveCorrection(opts.UpAxis)

	return o
}

// ID under which the layer registers in the host map
func (o *Overlay) ID() string { return o.options.ID }

// Type is always host.LayerTypeCustom
func (o *Overlay) Type() string { return host.LayerTypeCustom }

// RenderingMode is always host.RenderingMode3D
func (o *Overlay) RenderingMode() string { return host.RenderingMode3D }

// Options returns the resolved options given to New
func (o *Overlay) Options() Options { return o.options }

// Anchor is the current origin of the scene
func (o *Overlay) Anchor() geo.Point { return o.anchor }

// AnchorState is the cached Mercator state of Anchor
func (o *Overlay) AnchorState() geo.AnchorState { return o.anchorState }

// UpAxis in use, which is Y after an invalid axis was given
func (o *Overlay) UpAxis() orient.UpAxis { return o.correction.Axis }

// Correction derived from UpAxis
func (o *Overlay) Correction() orient.Correction { return o.correction }

// State reports whether the overlay currently owns a scene
func (o *Overlay) State() State {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.scene == nil {
		return StateUninitialized
	}
	return StateAttached
}

// Scene returns the current scene, or nil before attach and after removal
func (o *Overlay) Scene() render.Scene {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.scene
}

// Camera returns the camera driven by the overlay, or nil when not attached
func (o *Overlay) Camera() render.Camera {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.camera
}

// OnAdd attaches the overlay to the host map: any previous scene and engine
// are disposed, then a new engine is bound to gc and the map canvas, with a
// transparent manual-clear scene and a camera.
// On error the overlay stays uninitialized and Render does nothing.
func (o *Overlay) OnAdd(m host.Map, gc render.GraphicsContext) error {
	if m == nil {
		return ErrNilMap
	}
	if o.factory == nil {
		return ErrNilFactory
	}
	if gc == nil {
		return ErrNilGraphicsContext
	}
	if gc.Device() == nil || gc.Queue() == nil {
		return fmt.Errorf("%w: no device or queue", ErrNilGraphicsContext)
	}

	o.m = m
	o.dispose()

	engine, err := o.factory.NewEngine(gc, m.Canvas(), render.EngineOptions{
		Antialias:          o.options.Antialias,
		AdaptToDeviceRatio: o.options.AdaptToDeviceRatio,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEngineCreation, err)
	}
	propagateLogger(engine)

	scene, err := engine.NewScene(render.OverlaySceneOptions(o.options.UseRightHandedSystem))
	if err != nil {
		engine.Dispose()
		return fmt.Errorf("%w: scene: %w", ErrEngineCreation, err)
	}

	if !o.options.DisableDefaultLighting {
		scene.AddDefaultLighting()
	}

	camera := o.options.Camera
	if camera == nil {
		camera = scene.NewCamera(CameraName)
	}
	scene.SetActiveCamera(camera)

	o.mu.Lock()
	o.engine, o.scene, o.camera = engine, scene, camera
	close(o.ready)
	o.mu.Unlock()

	Logger().Info("geolayer: attached",
		"id", o.options.ID,
		"adapter", gc.AdapterInfo().Name,
		"surfaceFormat", gc.SurfaceFormat().String(),
		"camera", camera.Name(),
		"anchor", o.anchor,
		"upAxis", o.correction.Axis.String())

	o.Events.emit(AttachEvent{Scene: scene, Camera: camera})
	o.Events.flush()

	return nil
}

// OnRemove releases the scene and engine and returns the overlay to the
// uninitialized state. The overlay may be added again afterwards.
func (o *Overlay) OnRemove(m host.Map) {
	released := o.dispose()
	o.m = nil
	if !released {
		return
	}

	Logger().Info("geolayer: detached", "id", o.options.ID)

	o.Events.emit(DetachEvent{})
	o.Events.flush()
}

// dispose releases the scene then the engine, and re-arms the ready channel.
// It reports whether anything was released.
func (o *Overlay) dispose() bool {
	o.mu.Lock()
	engine, scene := o.engine, o.scene
	o.engine, o.scene, o.camera = nil, nil, nil
	select {
	case <-o.ready:
		o.ready = make(chan struct{})
	default:
	}
	o.mu.Unlock()

	if scene != nil {
		scene.Dispose()
	}
	if engine != nil {
		engine.Dispose()
	}

	return scene != nil || engine != nil
}

// Render draws the scene for one host frame. matrix is the host's
// column-major view-projection in its Mercator space.
//
// Before attach, or without a map, camera or scene, Render does nothing.
func (o *Overlay) Render(gc render.GraphicsContext, matrix []float64) {
	o.mu.RLock()
	engine, scene, camera := o.engine, o.scene, o.camera
	o.mu.RUnlock()

	if camera == nil || scene == nil || o.m == nil {
		return
	}

	projection, err := frame.ParseProjection(matrix)
	if err != nil {
		Logger().Warn("geolayer: frame skipped", "id", o.options.ID, "error", err)
		return
	}

	world := o.FrameTransform().World()
	combined := frame.Combine(world, projection)
	camera.FreezeProjectionMatrix(combined)

	o.mu.Lock()
	o.lastFrame = combined
	o.frames++
	o.mu.Unlock()

	if err := scene.Render(); err != nil {
		Logger().Warn("geolayer: scene render failed", "id", o.options.ID, "error", err)
	}

	o.resetState(engine)
	o.m.TriggerRepaint()
}

// FrameTransform is the transform the next frame will use
func (o *Overlay) FrameTransform() frame.Transform {
	return frame.New(o.anchorState, o.correction)
}

// Frame returns the last matrix installed into the camera and the number of
// frames rendered so far
func (o *Overlay) Frame() (mgl64.Mat4, uint64) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lastFrame, o.frames
}

// resetState leaves the shared context usable by the host. Failures are
// not propagated: they must not abort the frame nor the host's render loop.
func (o *Overlay) resetState(engine render.Engine) {
	if engine == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			Logger().Debug("geolayer: engine state reset panicked", "id", o.options.ID, "panic", r)
		}
	}()

	if err := engine.ResetState(); err != nil {
		Logger().Debug("geolayer: engine state reset failed", "id", o.options.ID, "error", err)
	}
}

// RequestRedraw asks the host for another frame
func (o *Overlay) RequestRedraw() {
	if o.m != nil {
		o.m.TriggerRepaint()
	}
}

// WaitForSceneInit blocks until the overlay is attached and returns its
// scene, or returns ctx.Err() if ctx is done first.
func (o *Overlay) WaitForSceneInit(ctx context.Context) (render.Scene, error) {
	for {
		o.mu.RLock()
		scene, ready := o.scene, o.ready
		o.mu.RUnlock()

		if scene != nil {
			return scene, nil
		}

		select {
		case <-ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// SetAnchor moves the origin of the scene. The cached Mercator state is
// recomputed at once, so the next frame is drawn at the new anchor.
func (o *Overlay) SetAnchor(p geo.Point) {
	previous := o.anchor
	o.anchor = p
	o.anchorState = geo.NewAnchorState(p)

	o.Events.emit(AnchorChangeEvent{Previous: previous, Current: p})
	o.Events.flush()
}

// SetUpAxis recomputes the orientation correction. An invalid axis is
// logged and replaced by the default Y axis.
func (o *Overlay) SetUpAxis(axis orient.UpAxis) {
	o.correction = o.resolveCorrection(axis)

	o.Events.emit(UpAxisChangeEvent{Correction: o.correction})
	o.Events.flush()
}

// SetUpAxisString is SetUpAxis for "Y", "Z" or "x,y,z"
func (o *Overlay) SetUpAxisString(s string) {
	axis, _ := orient.ParseUpAxis(s)
	o.SetUpAxis(axis)
}

func (o *Overlay) resolveCorrection(axis orient.UpAxis) orient.Correction {
	correction, err := orient.NewCorrection(axis)
	if err != nil {
		Logger().Warn("geolayer: invalid up axis, using Y",
			"id", o.options.ID,
			"upAxis", axis.String(),
			"error", err)
	}
	return correction
}

// LatLngAltitudeToVector3 returns the scene position of a geographic point:
// its offset from the anchor in meters, expressed in the up-axis convention
// so that geographic up lies along the configured axis
func (o *Overlay) LatLngAltitudeToVector3(p geo.Point) mgl64.Vec3 {
	return o.toScene(p, o.anchor, o.correction)
}

// LatLngAltitudeToVector3Ref is LatLngAltitudeToVector3 writing into target.
// A nil target is allocated.
func (o *Overlay) LatLngAltitudeToVector3Ref(p geo.Point, target *mgl64.Vec3) *mgl64.Vec3 {
	if target == nil {
		target = new(mgl64.Vec3)
	}
	*target = o.LatLngAltitudeToVector3(p)
	return target
}

// LatLngAltitudesToVector3 converts points in bulk using Options.Workers goroutines
func (o *Overlay) LatLngAltitudesToVector3(points []geo.Point) []mgl64.Vec3 {
	anchor, correction := o.anchor, o.correction
	out := make([]mgl64.Vec3, len(points))

	task(o.options.Workers, points, func(i int, p geo.Point) {
		out[i] = o.toScene(p, anchor, correction)
	})

	return out
}

// Vector3ToLatLngAltitude is the inverse of LatLngAltitudeToVector3
func (o *Overlay) Vector3ToLatLngAltitude(v mgl64.Vec3) geo.Point {
	local := o.correction.Apply(v)

	p := geo.LocalToLatLng(local.X(), local.Z(), o.anchor)
	p.Altitude = o.anchor.Altitude + local.Y()

	return p
}

func (o *Overlay) toScene(p, anchor geo.Point, correction orient.Correction) mgl64.Vec3 {
	if l := Logger(); l.Enabled(context.Background(), slog.LevelDebug) {
		if d := geo.DistanceMeters(p, anchor); d > geo.LocalAccuracyRadius {
			l.Debug("geolayer: point far from anchor, local approximation degrades",
				"id", o.options.ID,
				"distance", d)
		}
	}

	return correction.Revert(geo.ToLocal(p, anchor))
}
