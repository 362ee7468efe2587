package vkframe

import (
	"io"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// App wires a window, a device, a model and the frame loop together. It must
// be created and run on the main OS thread.
type App struct {
	cfg      Config
	logFile  io.Closer
	glfwUp   bool
	window   *CoreWindow
	device   *CoreDevice
	model    *Model
	renderer *ModelRenderer
	loop     *FrameLoop
}

// NewApp initializes glfw and the Vulkan loader and builds every object the
// frame loop needs. On error all partially created state is released.
func NewApp(cfg Config, vertices []Vertex) (app *App, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	app = &App{cfg: cfg}
	defer func() {
		if err != nil {
			app.Destroy()
			app = nil
		}
	}()

	if cfg.LogFile != "" {
		if app.logFile, err = OpenLogFile(cfg.LogFile); err != nil {
			return app, errors.Wrap(err, "open log file")
		}
	}

	if err = glfw.Init(); err != nil {
		return app, errors.Wrap(err, "init glfw")
	}
	app.glfwUp = true
	vk.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err = vk.Init(); err != nil {
		return app, errors.Wrap(err, "init vulkan loader")
	}

	if app.window, err = NewCoreWindow(cfg); err != nil {
		return app, err
	}
	if app.device, err = NewCoreDevice(cfg, app.window); err != nil {
		return app, err
	}
	if app.model, err = NewModel(app.device, vertices); err != nil {
		return app, err
	}
	if app.renderer, err = NewModelRenderer(app.device, app.model, cfg); err != nil {
		return app, err
	}
	app.loop, err = NewFrameLoop(app.device, app.window, app.renderer)
	return app, err
}

// Run blocks until the window is closed or a frame fails.
func (a *App) Run() error {
	InfoLog.Printf("vulkan: running %s on %s", a.cfg.Title, vk.ToString(a.device.Properties().DeviceName[:]))
	return a.loop.Run()
}

func (a *App) Destroy() {
	if a.loop != nil {
		a.loop.Destroy()
		a.loop = nil
	}
	if a.renderer != nil {
		a.renderer.Destroy()
		a.renderer = nil
	}
	if a.model != nil {
		a.model.Destroy()
		a.model = nil
	}
	if a.device != nil {
		a.device.Destroy()
		a.device = nil
	}
	if a.window != nil {
		a.window.Destroy()
		a.window = nil
	}
	if a.glfwUp {
		glfw.Terminate()
		a.glfwUp = false
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}
