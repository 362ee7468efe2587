package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Window is the presentation window as seen by the frame loop.
type Window interface {
	// Extent is the current framebuffer size in pixels.
	Extent() vk.Extent2D
	// WasResized reports whether the framebuffer changed size since ResetResized.
	WasResized() bool
	ResetResized()
	ShouldClose() bool
	PollEvents()
	// WaitEvents blocks until at least one window event arrives.
	WaitEvents()
}

// Renderer records the draw commands of a frame.
type Renderer interface {
	// Prepare is called after every swapchain (re)creation, before any frame
	// is recorded against it.
	Prepare(sc *SwapChain) error
	Record(cmd vk.CommandBuffer, sc *SwapChain, imageIndex uint32) error
}

type LoopState int

const (
	StatePresenting LoopState = iota
	StateRecreating
)

func (s LoopState) String() string {
	if s == StateRecreating {
		return "recreating"
	}
	return "presenting"
}

// FrameLoop drives acquire, record and submit and replaces the swapchain
// whenever presentation reports it stale or the window is resized.
type FrameLoop struct {
	device   Device
	cmds     Commands
	window   Window
	renderer Renderer

	swapChain      *SwapChain
	commandBuffers []vk.CommandBuffer
	state          LoopState
	frames         uint64
}

// NewFrameLoop creates the first swapchain through the recreation path, so it
// waits for a non empty window like any later recreation.
func NewFrameLoop(device Device, window Window, renderer Renderer) (*FrameLoop, error) {
	l := &FrameLoop{
		device:   device,
		cmds:     device.Commands(),
		window:   window,
		renderer: renderer,
		state:    StateRecreating,
	}
	if err := l.recreateSwapChain(); err != nil {
		l.Destroy()
		return nil, err
	}
	return l, nil
}

func (l *FrameLoop) State() LoopState {
	return l.state
}

func (l *FrameLoop) SwapChain() *SwapChain {
	return l.swapChain
}

func (l *FrameLoop) CommandBuffers() []vk.CommandBuffer {
	return l.commandBuffers
}

// FrameCount is the number of frames submitted so far.
func (l *FrameLoop) FrameCount() uint64 {
	return l.frames
}

// Run draws frames until the window asks to close, then waits for the GPU to
// finish.
func (l *FrameLoop) Run() error {
	for !l.window.ShouldClose() {
		l.window.PollEvents()
		if err := l.DrawFrame(); err != nil {
			l.cmds.DeviceWaitIdle()
			return err
		}
	}
	return NewError(l.cmds.DeviceWaitIdle())
}

// DrawFrame renders one frame. Out-of-date and suboptimal presentation are
// handled here by recreating the swapchain. Any other failure is returned.
func (l *FrameLoop) DrawFrame() error {
	imageIndex, res := l.swapChain.AcquireNextImage()
	switch ClassifyResult(res) {
	case StatusOutOfDate:
		l.state = StateRecreating
		return l.recreateSwapChain()
	case StatusFatal:
		return wrapResult(res, "acquire swapchain image")
	}
	// A suboptimal image is still presentable. It is drawn and the chain is
	// replaced once it has been submitted.
	recreate := ClassifyResult(res) == StatusSuboptimal

	cmd := l.commandBuffers[imageIndex]
	if err := l.renderer.Record(cmd, l.swapChain, imageIndex); err != nil {
		return errors.Wrapf(err, "record command buffer %d", imageIndex)
	}

	res = l.swapChain.SubmitCommandBuffers(cmd, imageIndex)
	l.frames++

	// A fatal result wins over a pending resize or a suboptimal acquire.
	status := ClassifyResult(res)
	if status == StatusFatal {
		return wrapResult(res, "present swapchain image")
	}
	if status == StatusOutOfDate || status == StatusSuboptimal || l.window.WasResized() {
		recreate = true
	}
	if recreate {
		l.window.ResetResized()
		l.state = StateRecreating
		return l.recreateSwapChain()
	}
	return nil
}

func (l *FrameLoop) recreateSwapChain() error {
	extent := l.window.Extent()
	for extent.Width == 0 || extent.Height == 0 {
		l.window.WaitEvents()
		extent = l.window.Extent()
	}
	if err := NewError(l.cmds.DeviceWaitIdle()); err != nil {
		return errors.Wrap(err, "wait device idle")
	}

	sc, err := NewSwapChainFrom(l.device, extent, l.swapChain)
	l.swapChain = sc
	if err != nil {
		return errors.Wrap(err, "recreate swapchain")
	}

	if len(l.commandBuffers) != sc.GetImageCount() {
		if err := l.reallocateCommandBuffers(uint32(sc.GetImageCount())); err != nil {
			return err
		}
	}
	if err := l.renderer.Prepare(sc); err != nil {
		return errors.Wrap(err, "prepare renderer")
	}
	l.state = StatePresenting
	return nil
}

func (l *FrameLoop) reallocateCommandBuffers(count uint32) error {
	l.freeCommandBuffers()
	buffers, err := l.cmds.AllocateCommandBuffers(l.device.CommandPool(), count)
	if err != nil {
		return errors.Wrap(err, "allocate command buffers")
	}
	l.commandBuffers = buffers
	return nil
}

func (l *FrameLoop) freeCommandBuffers() {
	if len(l.commandBuffers) > 0 {
		l.cmds.FreeCommandBuffers(l.device.CommandPool(), l.commandBuffers)
	}
	l.commandBuffers = nil
}

// Destroy releases the command buffers and the swapchain. The renderer is
// owned by the caller.
func (l *FrameLoop) Destroy() {
	l.cmds.DeviceWaitIdle()
	l.freeCommandBuffers()
	if l.swapChain != nil {
		l.swapChain.Destroy()
		l.swapChain = nil
	}
}
