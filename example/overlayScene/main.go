package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/akmonengine/geolayer"
	"github.com/akmonengine/geolayer/geo"
	"github.com/akmonengine/geolayer/render"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// SimulatedMap stands in for the host map: it owns a canvas and a camera
// position and hands its view-projection to custom layers every frame.
type SimulatedMap struct {
	accessToken string
	provider    *headlessProvider
	canvas      simulatedCanvas
	center      geo.Point
	zoom        float64
	layers      []*geolayer.Overlay
	repaints    int
}

// NewSimulatedMap creates a map handle. The access token is given here
// rather than read from the environment.
func NewSimulatedMap(accessToken string, center geo.Point, zoom float64) (*SimulatedMap, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("simulated map: empty access token")
	}
	return &SimulatedMap{
		accessToken: accessToken,
		provider:    newHeadlessProvider(),
		canvas:      simulatedCanvas{width: 1280, height: 720, ratio: 2},
		center:      center,
		zoom:        zoom,
	}, nil
}

func (m *SimulatedMap) TriggerRepaint()       { m.repaints++ }
func (m *SimulatedMap) Canvas() render.Canvas { return m.canvas }

func (m *SimulatedMap) AddLayer(o *geolayer.Overlay) error {
	if err := o.OnAdd(m, m.provider); err != nil {
		return err
	}
	m.layers = append(m.layers, o)
	return nil
}

func (m *SimulatedMap) RemoveLayer(o *geolayer.Overlay) {
	for i, layer := range m.layers {
		if layer == o {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			o.OnRemove(m)
			return
		}
	}
}

// Matrix is an orthographic view-projection of the host Mercator space
// centered on the map center
func (m *SimulatedMap) Matrix() mgl64.Mat4 {
	center := geo.MercatorFromPoint(m.center)
	worldSize := 512 * math.Pow(2, m.zoom)
	width, height := m.canvas.Size()

	return mgl64.Scale3D(2*worldSize/float64(width), -2*worldSize/float64(height), 1).
		Mul4(mgl64.Translate3D(-center.X, -center.Y, -center.Z))
}

func (m *SimulatedMap) Frame() {
	matrix := m.Matrix()
	for _, layer := range m.layers {
		layer.Render(m.provider, matrix[:])
	}
}

type simulatedCanvas struct {
	width, height int
	ratio         float64
}

func (c simulatedCanvas) Size() (int, int)    { return c.width, c.height }
func (c simulatedCanvas) PixelRatio() float64 { return c.ratio }

// headlessProvider is the GPU context shared by the simulated map and its
// layers. It has no surface.
type headlessProvider struct {
	device *headlessDevice
	queue  *headlessQueue
}

type headlessDevice struct {
	label string
}

type headlessQueue struct {
	submitted int
}

func (q *headlessQueue) Submit() { q.submitted++ }

func newHeadlessProvider() *headlessProvider {
	return &headlessProvider{
		device: &headlessDevice{label: "headless"},
		queue:  &headlessQueue{},
	}
}

func (p *headlessProvider) Device() gpucontext.Device             { return p.device }
func (p *headlessProvider) Queue() gpucontext.Queue               { return p.queue }
func (p *headlessProvider) Adapter() gpucontext.Adapter           { return nil }
func (p *headlessProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }

func (p *headlessProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "simulated", Type: gpucontext.AdapterTypeSoftware}
}

// RecordingFactory creates engines that keep the matrix of every frame
type RecordingFactory struct{}

func (RecordingFactory) NewEngine(gc render.GraphicsContext, canvas render.Canvas, opts render.EngineOptions) (render.Engine, error) {
	device, ok := gc.Device().(*headlessDevice)
	if !ok {
		return nil, fmt.Errorf("engine: unsupported device %T", gc.Device())
	}
	queue, ok := gc.Queue().(*headlessQueue)
	if !ok {
		return nil, fmt.Errorf("engine: unsupported queue %T", gc.Queue())
	}

	width, height := canvas.Size()
	logger := slog.Default()
	logger.Debug("engine: created",
		"device", device.label,
		"format", gc.SurfaceFormat().String(),
		"width", width,
		"height", height,
		"antialias", opts.Antialias)

	return &RecordingEngine{logger: logger, queue: queue}, nil
}

type RecordingEngine struct {
	logger *slog.Logger
	queue  *headlessQueue
	scene  *RecordingScene
}

func (e *RecordingEngine) SetLogger(l *slog.Logger) { e.logger = l }

func (e *RecordingEngine) NewScene(opts render.SceneOptions) (render.Scene, error) {
	e.scene = &RecordingScene{logger: e.logger, queue: e.queue}
	e.logger.Debug("engine: scene created", "transparent", opts.Transparent, "rightHanded", opts.UseRightHandedSystem)
	return e.scene, nil
}

func (e *RecordingEngine) ResetState() error { return nil }
func (e *RecordingEngine) Dispose()          { e.logger.Debug("engine: disposed") }

// RecordingScene projects its meshes with the active camera's frozen matrix
type RecordingScene struct {
	logger *slog.Logger
	queue  *headlessQueue
	camera *RecordingCamera
	meshes map[string]mgl64.Vec3
}

func (s *RecordingScene) NewCamera(name string) render.Camera {
	return &RecordingCamera{name: name}
}

func (s *RecordingScene) SetActiveCamera(camera render.Camera) {
	s.camera, _ = camera.(*RecordingCamera)
}

func (s *RecordingScene) AddDefaultLighting() { s.logger.Debug("scene: default lighting") }

func (s *RecordingScene) AddMesh(name string, position mgl64.Vec3) {
	if s.meshes == nil {
		s.meshes = make(map[string]mgl64.Vec3)
	}
	s.meshes[name] = position
}

func (s *RecordingScene) Render() error {
	if s.camera == nil {
		return fmt.Errorf("scene: no active camera")
	}
	for name, position := range s.meshes {
		clip := mgl64.TransformCoordinate(position, s.camera.matrix)
		fmt.Printf("   %-10s scene=%v clip=(%.4f, %.4f)\n", name, position, clip.X(), clip.Y())
	}
	s.queue.Submit()
	return nil
}

func (s *RecordingScene) Dispose() { s.meshes = nil }

type RecordingCamera struct {
	name   string
	matrix mgl64.Mat4
}

func (c *RecordingCamera) Name() string                        { return c.name }
func (c *RecordingCamera) FreezeProjectionMatrix(m mgl64.Mat4) { c.matrix = m }

func main() {
	configFile := flag.String("config", "", "Path to an options file (.json, .toml, .yaml)")
	token := flag.String("token", "demo-token", "Access token of the host map")
	upAxis := flag.String("up", "", "Up axis of the scene content: Y, Z or x,y,z")
	frames := flag.Int("frames", 3, "Number of frames to render")
	verbose := flag.Bool("v", false, "Log debug messages")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	geolayer.SetLogger(logger)

	opts := geolayer.DefaultOptions()
	opts.Anchor = geo.NewPoint(-35.39847, 148.9819, 0)
	if *configFile != "" {
		var err error
		if opts, err = geolayer.LoadOptions(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	overlay := geolayer.New(opts, RecordingFactory{})
	if *upAxis != "" {
		overlay.SetUpAxisString(*upAxis)
	}

	overlay.Events.Subscribe(geolayer.ON_ATTACH, func(e geolayer.Event) {
		fmt.Printf("Attached with camera %q\n", e.(geolayer.AttachEvent).Camera.Name())
	})

	m, err := NewSimulatedMap(*token, overlay.Anchor(), 18)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := m.AddLayer(overlay); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	scene, err := overlay.WaitForSceneInit(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	anchor := overlay.Anchor()
	landmarks := map[string]geo.Point{
		"anchor": anchor,
		"east":   geo.NewPoint(anchor.Lat, anchor.Lng+0.0001, anchor.Altitude),
		"north":  geo.NewPoint(anchor.Lat+0.0001, anchor.Lng, anchor.Altitude),
		"mast":   geo.NewPoint(anchor.Lat-0.0002, anchor.Lng+0.0003, anchor.Altitude+40),
	}

	recording := scene.(*RecordingScene)
	for name, p := range landmarks {
		position := overlay.LatLngAltitudeToVector3(p)
		recording.AddMesh(name, position)
		fmt.Printf("%-10s %.6f,%.6f → %v (%.2f m from anchor)\n",
			name, p.Lat, p.Lng, position, geo.DistanceMeters(p, anchor))
	}

	for i := 0; i < *frames; i++ {
		fmt.Printf("Frame %d (zoom %.1f)\n", i, m.zoom)
		m.Frame()
		m.zoom += 0.5
	}

	_, rendered := overlay.Frame()
	fmt.Printf("Rendered %d frames, %d submissions, %d repaints requested\n",
		rendered, m.provider.queue.submitted, m.repaints)

	m.RemoveLayer(overlay)
}
