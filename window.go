package vkframe

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// CoreWindow is a resizable glfw window without a client API, presented
// through a Vulkan surface.
type CoreWindow struct {
	window  *glfw.Window
	resized bool
}

// NewCoreWindow opens the window. glfw must be initialized on the main thread.
func NewCoreWindow(cfg Config) (*CoreWindow, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	w := &CoreWindow{window: window}
	window.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized = true
	})
	return w, nil
}

func (w *CoreWindow) CreateSurface(instance vk.Instance) (vk.Surface, error) {
	ptr, err := w.window.CreateWindowSurface(instance, nil)
	if err != nil {
		return vk.NullSurface, errors.Wrap(err, "failed to create window surface")
	}
	return vk.SurfaceFromPointer(ptr), nil
}

func (w *CoreWindow) RequiredInstanceExtensions() []string {
	return w.window.GetRequiredInstanceExtensions()
}

func (w *CoreWindow) Extent() vk.Extent2D {
	width, height := w.window.GetFramebufferSize()
	return vk.Extent2D{Width: uint32(width), Height: uint32(height)}
}

func (w *CoreWindow) WasResized() bool {
	return w.resized
}

func (w *CoreWindow) ResetResized() {
	w.resized = false
}

func (w *CoreWindow) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *CoreWindow) PollEvents() {
	glfw.PollEvents()
}

func (w *CoreWindow) WaitEvents() {
	glfw.WaitEvents()
}

func (w *CoreWindow) Destroy() {
	if w.window != nil {
		w.window.Destroy()
		w.window = nil
	}
}
