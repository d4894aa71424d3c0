package geolayer

import (
	"errors"
	"fmt"

	"github.com/akmonengine/geolayer/render"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

type mockDevice struct{}

type mockQueue struct{}

// mockProvider implements gpucontext.DeviceProvider
type mockProvider struct {
	device gpucontext.Device
	queue  gpucontext.Queue
	format gputypes.TextureFormat
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		device: &mockDevice{},
		queue:  &mockQueue{},
		format: gputypes.TextureFormatBGRA8Unorm,
	}
}

func (m *mockProvider) Device() gpucontext.Device             { return m.device }
func (m *mockProvider) Queue() gpucontext.Queue               { return m.queue }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }

func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeSoftware}
}

// callLog records engine calls in order across all mocks of a test
type callLog struct {
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

type mockCanvas struct{}

func (mockCanvas) Size() (int, int)    { return 1024, 768 }
func (mockCanvas) PixelRatio() float64 { return 2 }

type mockMap struct {
	repaints int
}

func (m *mockMap) TriggerRepaint()       { m.repaints++ }
func (m *mockMap) Canvas() render.Canvas { return mockCanvas{} }

type mockCamera struct {
	name   string
	frozen []mgl64.Mat4
}

func (c *mockCamera) Name() string { return c.name }

func (c *mockCamera) FreezeProjectionMatrix(m mgl64.Mat4) {
	c.frozen = append(c.frozen, m)
}

type mockScene struct {
	id        int
	log       *callLog
	options   render.SceneOptions
	renders   int
	lighting  int
	disposed  bool
	active    render.Camera
	cameras   []*mockCamera
	renderErr error
}

func (s *mockScene) NewCamera(name string) render.Camera {
	c := &mockCamera{name: name}
	s.cameras = append(s.cameras, c)
	return c
}

func (s *mockScene) SetActiveCamera(camera render.Camera) { s.active = camera }
func (s *mockScene) AddDefaultLighting()                  { s.lighting++ }

func (s *mockScene) Render() error {
	s.renders++
	s.log.add("scene%d.render", s.id)
	return s.renderErr
}

func (s *mockScene) Dispose() {
	s.disposed = true
	s.log.add("scene%d.dispose", s.id)
}

type mockEngine struct {
	id         int
	log        *callLog
	gc         render.GraphicsContext
	canvas     render.Canvas
	options    render.EngineOptions
	scenes     []*mockScene
	sceneErr   error
	resets     int
	resetErr   error
	resetPanic bool
	disposed   bool
}

func (e *mockEngine) NewScene(opts render.SceneOptions) (render.Scene, error) {
	if e.sceneErr != nil {
		return nil, e.sceneErr
	}
	s := &mockScene{id: e.id, log: e.log, options: opts}
	e.scenes = append(e.scenes, s)
	e.log.add("engine%d.newScene", e.id)
	return s, nil
}

func (e *mockEngine) ResetState() error {
	e.resets++
	e.log.add("engine%d.reset", e.id)
	if e.resetPanic {
		panic("lost context")
	}
	return e.resetErr
}

func (e *mockEngine) Dispose() {
	e.disposed = true
	e.log.add("engine%d.dispose", e.id)
}

type mockFactory struct {
	log      callLog
	engines  []*mockEngine
	err      error
	sceneErr error
}

func (f *mockFactory) NewEngine(gc render.GraphicsContext, canvas render.Canvas, opts render.EngineOptions) (render.Engine, error) {
	if f.err != nil {
		return nil, f.err
	}
	e := &mockEngine{
		id:       len(f.engines) + 1,
		log:      &f.log,
		gc:       gc,
		canvas:   canvas,
		options:  opts,
		sceneErr: f.sceneErr,
	}
	f.engines = append(f.engines, e)
	f.log.add("engine%d.new", e.id)
	return e, nil
}

func (f *mockFactory) lastEngine() *mockEngine {
	if len(f.engines) == 0 {
		return nil
	}
	return f.engines[len(f.engines)-1]
}

func (f *mockFactory) lastScene() *mockScene {
	e := f.lastEngine()
	if e == nil || len(e.scenes) == 0 {
		return nil
	}
	return e.scenes[len(e.scenes)-1]
}

var errEngine = errors.New("no webgl2")
