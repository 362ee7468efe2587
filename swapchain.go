package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SwapChain owns the presentable image chain of a surface together with
// everything sized by it: image views, depth buffers, framebuffers, the
// render pass and the per-frame synchronization sets.
//
// A SwapChain is never resized. When the surface changes it is replaced with
// NewSwapChainFrom.
type SwapChain struct {
	device Device
	cmds   Commands

	swapchain vk.Swapchain
	// retired is the handle handed over by the chain this one replaces.
	// It is destroyed once the new chain is complete.
	retired vk.Swapchain

	windowExtent vk.Extent2D
	extent       vk.Extent2D
	imageFormat  vk.Format
	depthFormat  vk.Format
	presentMode  vk.PresentMode

	images          []vk.Image
	imageViews      []vk.ImageView
	depthImages     []vk.Image
	depthMemories   []vk.DeviceMemory
	depthImageViews []vk.ImageView
	framebuffers    []vk.Framebuffer
	renderPass      vk.RenderPass

	frames         []SyncSet
	imagesInFlight []vk.Fence
	currentFrame   int
}

// NewSwapChain builds a chain for the device surface. windowExtent is only
// used when the surface leaves the extent up to the application.
func NewSwapChain(device Device, windowExtent vk.Extent2D) (*SwapChain, error) {
	return newSwapChain(device, windowExtent, vk.NullSwapchain)
}

// NewSwapChainFrom builds the replacement of previous. Everything previous
// built on its images is released first. Its native handle is then passed as
// the old swapchain and destroyed once the replacement is complete, or when
// building it fails. previous must not be used afterwards, and the device
// should be idle.
func NewSwapChainFrom(device Device, windowExtent vk.Extent2D, previous *SwapChain) (*SwapChain, error) {
	var old vk.Swapchain = vk.NullSwapchain
	if previous != nil {
		old = previous.releaseHandle()
		previous.Destroy()
	}
	return newSwapChain(device, windowExtent, old)
}

func newSwapChain(device Device, windowExtent vk.Extent2D, old vk.Swapchain) (*SwapChain, error) {
	sc := &SwapChain{
		device:       device,
		cmds:         device.Commands(),
		swapchain:    vk.NullSwapchain,
		retired:      old,
		windowExtent: windowExtent,
		renderPass:   vk.NullRenderPass,
	}
	if err := sc.init(); err != nil {
		sc.Destroy()
		return nil, err
	}
	sc.destroyRetired()
	return sc, nil
}

func (sc *SwapChain) init() error {
	if err := sc.createSwapChain(); err != nil {
		return err
	}
	if err := sc.createImageViews(); err != nil {
		return err
	}
	if err := sc.findDepthFormat(); err != nil {
		return err
	}
	if err := sc.createRenderPass(); err != nil {
		return err
	}
	if err := sc.createDepthResources(); err != nil {
		return err
	}
	if err := sc.createFramebuffers(); err != nil {
		return err
	}
	return sc.createSyncObjects()
}

func (sc *SwapChain) createSwapChain() error {
	support := sc.device.GetSwapChainSupport()

	surfaceFormat, ok := chooseSurfaceFormat(support.Formats)
	if !ok {
		return errors.New("surface reports no formats")
	}
	sc.presentMode = choosePresentMode(support.PresentModes)
	sc.extent = chooseExtent(support.Capabilities, sc.windowExtent)
	imageCount := chooseImageCount(support.Capabilities)

	info := &vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          sc.device.Surface(),
		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      sc.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     support.Capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      sc.presentMode,
		Clipped:          vk.True,
		OldSwapchain:     sc.retired,
	}
	if families := sc.device.FindPhysicalQueueFamilies(); families.Separate() {
		indices := []uint32{families.GraphicsFamily, families.PresentFamily}
		info.ImageSharingMode = vk.SharingModeConcurrent
		info.QueueFamilyIndexCount = uint32(len(indices))
		info.PQueueFamilyIndices = indices
	}

	swapchain, err := sc.cmds.CreateSwapchain(info)
	if err != nil {
		return errors.Wrap(err, "create swapchain")
	}
	sc.swapchain = swapchain

	// The driver is allowed to create more images than requested.
	images, err := sc.cmds.GetSwapchainImages(sc.swapchain)
	if err != nil {
		return errors.Wrap(err, "get swapchain images")
	}
	sc.images = images
	sc.imageFormat = surfaceFormat.Format
	InfoLog.Printf("vulkan: swapchain %dx%d with %d images", sc.extent.Width, sc.extent.Height, len(images))
	return nil
}

func (sc *SwapChain) createSyncObjects() error {
	frames, err := newSyncSets(sc.cmds, MaxFramesInFlight)
	sc.frames = frames
	if err != nil {
		return err
	}
	sc.imagesInFlight = make([]vk.Fence, len(sc.images))
	for i := range sc.imagesInFlight {
		sc.imagesInFlight[i] = vk.NullFence
	}
	return nil
}

// releaseHandle gives up ownership of the native swapchain handle.
func (sc *SwapChain) releaseHandle() vk.Swapchain {
	handle := sc.swapchain
	sc.swapchain = vk.NullSwapchain
	return handle
}

func (sc *SwapChain) destroyRetired() {
	if sc.retired != vk.NullSwapchain {
		sc.cmds.DestroySwapchain(sc.retired)
		sc.retired = vk.NullSwapchain
	}
}

// Destroy releases everything the chain still owns. It tolerates a chain whose
// construction failed halfway and may be called more than once.
func (sc *SwapChain) Destroy() {
	sc.destroyImageViews()
	if sc.swapchain != vk.NullSwapchain {
		sc.cmds.DestroySwapchain(sc.swapchain)
		sc.swapchain = vk.NullSwapchain
	}
	sc.destroyRetired()
	sc.destroyDepthResources()
	sc.destroyFramebuffers()
	if sc.renderPass != vk.NullRenderPass {
		sc.cmds.DestroyRenderPass(sc.renderPass)
		sc.renderPass = vk.NullRenderPass
	}
	for i := range sc.frames {
		sc.frames[i].destroy(sc.cmds)
	}
	sc.frames = nil
	sc.imagesInFlight = nil
}

// AcquireNextImage waits for the current frame slot to retire on the GPU and
// then asks the surface for the next image. The frame slot is not advanced.
func (sc *SwapChain) AcquireNextImage() (uint32, vk.Result) {
	frame := &sc.frames[sc.currentFrame]
	if res := sc.cmds.WaitForFence(frame.InFlight, vk.MaxUint64); isError(res) {
		return 0, res
	}
	return sc.cmds.AcquireNextImage(sc.swapchain, vk.MaxUint64, frame.ImageAvailable)
}

// SubmitCommandBuffers submits cmd for the image at imageIndex and presents
// it. If an earlier frame is still rendering into the same image the call
// blocks on that frame's fence first. The returned result is the present
// result, or the first failing one. The frame slot advances whatever the
// outcome.
func (sc *SwapChain) SubmitCommandBuffers(cmd vk.CommandBuffer, imageIndex uint32) vk.Result {
	defer sc.advanceFrame()

	frame := &sc.frames[sc.currentFrame]
	if pending := sc.imagesInFlight[imageIndex]; pending != vk.NullFence {
		if res := sc.cmds.WaitForFence(pending, vk.MaxUint64); isError(res) {
			return res
		}
	}
	sc.imagesInFlight[imageIndex] = frame.InFlight

	if res := sc.cmds.ResetFence(frame.InFlight); isError(res) {
		return res
	}

	submit := []vk.SubmitInfo{{
		SType:              vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.ImageAvailable},
		PWaitDstStageMask: []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cmd},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frame.RenderFinished},
	}}
	if res := sc.cmds.QueueSubmit(sc.device.GraphicsQueue(), submit, frame.InFlight); isError(res) {
		ErrorLog.Printf("vulkan: queue submit failed: %v", NewError(res))
		return res
	}

	return sc.cmds.QueuePresent(sc.device.PresentQueue(), &vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{frame.RenderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.swapchain},
		PImageIndices:      []uint32{imageIndex},
	})
}

func (sc *SwapChain) advanceFrame() {
	sc.currentFrame = (sc.currentFrame + 1) % MaxFramesInFlight
}

func (sc *SwapChain) GetRenderPass() vk.RenderPass {
	return sc.renderPass
}

func (sc *SwapChain) GetFrameBuffer(index int) vk.Framebuffer {
	return sc.framebuffers[index]
}

func (sc *SwapChain) GetImageView(index int) vk.ImageView {
	return sc.imageViews[index]
}

func (sc *SwapChain) GetSwapChainExtent() vk.Extent2D {
	return sc.extent
}

func (sc *SwapChain) GetImageCount() int {
	return len(sc.images)
}

func (sc *SwapChain) GetImageFormat() vk.Format {
	return sc.imageFormat
}

func (sc *SwapChain) GetDepthFormat() vk.Format {
	return sc.depthFormat
}

func (sc *SwapChain) GetPresentMode() vk.PresentMode {
	return sc.presentMode
}

// CurrentFrame is the in-flight slot the next acquire will use.
func (sc *SwapChain) CurrentFrame() int {
	return sc.currentFrame
}

func (sc *SwapChain) ExtentAspectRatio() float32 {
	if sc.extent.Height == 0 {
		return 0
	}
	return float32(sc.extent.Width) / float32(sc.extent.Height)
}
