package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/objmesh/internal/config"
	"github.com/Faultbox/objmesh/internal/engine/camera"
	"github.com/Faultbox/objmesh/internal/engine/gldevice"
	"github.com/Faultbox/objmesh/internal/engine/input"
	"github.com/Faultbox/objmesh/internal/engine/mesh"
	"github.com/Faultbox/objmesh/internal/engine/screenshot"
	"github.com/Faultbox/objmesh/internal/engine/window"
	"github.com/Faultbox/objmesh/internal/logger"
)

var (
	clearColor = mgl32.Vec3{0x68 / 255.0, 0xB0 / 255.0, 0xD8 / 255.0}
	lightDir   = mgl32.Vec3{0, -0.5, -1}
	lightColor = mgl32.Vec3{1, 1, 1}
)

// Turntable speed in radians per second.
const spinSpeed = 0.75

type viewer struct {
	win     *window.Window
	dev     *gldevice.Device
	builder *mesh.Builder
	mesh    *mesh.Mesh
	input   *input.Input
	camera  *camera.OrbitCamera
	shots   *screenshot.Capture

	spinning bool
	capture  bool
	angle    float32
}

func newViewer(cfg *config.Config, path string) (*viewer, error) {
	// Parse and build before opening a window so bad assets fail fast.
	builder := mesh.NewBuilder(mesh.Options{
		FlipTextures: cfg.Loader.FlipTextures,
		SearchPaths:  cfg.Loader.SearchPaths,
	})
	m, _, err := builder.Load(path)
	if err != nil {
		return nil, err
	}

	win, err := window.New(fmt.Sprintf("objview - %s", filepath.Base(path)), cfg.Window)
	if err != nil {
		return nil, err
	}

	dev, err := gldevice.New()
	if err != nil {
		win.Close()
		return nil, err
	}

	if err := m.Upload(dev); err != nil {
		m.Release(dev)
		builder.Close(dev)
		dev.Close()
		win.Close()
		return nil, err
	}

	cam := camera.NewOrbitCamera()
	cam.FitToSphere(m.Bounds.Center(), m.Bounds.Radius())

	return &viewer{
		win:     win,
		dev:     dev,
		builder: builder,
		mesh:    m,
		input:   input.New(),
		camera:  cam,
		shots:   screenshot.New("screenshots", "objview"),
	}, nil
}

// Run runs the frame loop until the window is closed or Escape is pressed.
func (v *viewer) Run() {
	last := time.Now()
	for {
		now := time.Now()
		dt := float32(now.Sub(last).Seconds())
		last = now

		frame := v.input.Update()
		if frame.Quit {
			return
		}
		v.update(frame, dt)
		v.render()
		if v.capture {
			v.saveScreenshot()
		}
		v.win.SwapBuffers()
	}
}

func (v *viewer) update(frame *input.Frame, dt float32) {
	if frame.DragX != 0 || frame.DragY != 0 {
		v.camera.HandleDrag(frame.DragX, frame.DragY)
	}
	if frame.Zoom != 0 {
		v.camera.HandleZoom(frame.Zoom)
	}
	if frame.KeyPressed(sdl.SCANCODE_R) {
		v.spinning = !v.spinning
	}
	if frame.KeyPressed(sdl.SCANCODE_F) {
		v.camera.FitToSphere(v.mesh.Bounds.Center(), v.mesh.Bounds.Radius())
		v.angle = 0
	}
	v.capture = frame.KeyPressed(sdl.SCANCODE_P)
	if frame.Resized {
		logger.Debug("window resized", zap.Int("width", frame.Width), zap.Int("height", frame.Height))
	}
	if v.spinning {
		v.angle += spinSpeed * dt
	}
}

func (v *viewer) render() {
	width, height := v.win.DrawableSize()
	v.dev.BeginFrame(width, height, clearColor)

	v.dev.SetCamera(v.camera.ViewMatrix(), v.camera.ProjectionMatrix(v.win.Aspect()), v.camera.Position())
	v.dev.SetLight(lightDir, lightColor)

	// Spin around the mesh center rather than the origin.
	center := v.mesh.Bounds.Center()
	model := mgl32.Translate3D(center[0], center[1], center[2]).
		Mul4(mgl32.HomogRotate3DY(v.angle)).
		Mul4(mgl32.Translate3D(-center[0], -center[1], -center[2]))
	v.dev.SetModel(model)

	v.mesh.Draw(v.dev)
}

func (v *viewer) saveScreenshot() {
	width, height := v.win.DrawableSize()
	name, err := v.shots.SavePixels(v.dev.ReadPixels(width, height), width, height)
	if err != nil {
		logger.Error("screenshot failed", zap.Error(err))
		return
	}
	logger.Info("screenshot saved", zap.String("file", name))
}

// Close releases the mesh, then the shared fallbacks, then the context.
func (v *viewer) Close() {
	v.mesh.Release(v.dev)
	v.builder.Close(v.dev)
	v.dev.Close()
	v.win.Close()
}
