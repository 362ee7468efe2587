package vkframe

import vk "github.com/vulkan-go/vulkan"

// Commands is the slice of the Vulkan API the swapchain, its frame buffers
// and the frame loop drive. Create calls report failures as errors, while
// the per-frame calls hand back the raw vk.Result so callers can tell
// out-of-date and suboptimal apart from real failures.
type Commands interface {
	CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error)
	DestroySwapchain(swapchain vk.Swapchain)
	GetSwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error)

	CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error)
	DestroyImageView(view vk.ImageView)
	DestroyImage(image vk.Image)
	FreeMemory(memory vk.DeviceMemory)

	CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error)
	DestroyRenderPass(renderPass vk.RenderPass)
	CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error)
	DestroyFramebuffer(framebuffer vk.Framebuffer)

	CreateSemaphore() (vk.Semaphore, error)
	DestroySemaphore(semaphore vk.Semaphore)
	CreateFence(signaled bool) (vk.Fence, error)
	DestroyFence(fence vk.Fence)
	WaitForFence(fence vk.Fence, timeout uint64) vk.Result
	ResetFence(fence vk.Fence) vk.Result

	AcquireNextImage(swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore) (uint32, vk.Result)
	QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result
	QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result

	AllocateCommandBuffers(pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error)
	FreeCommandBuffers(pool vk.CommandPool, buffers []vk.CommandBuffer)
	DeviceWaitIdle() vk.Result
}

// vulkanCommands forwards to the Vulkan loader for a single logical device.
type vulkanCommands struct {
	device vk.Device
}

func NewCommands(device vk.Device) Commands {
	return &vulkanCommands{device: device}
}

func (c *vulkanCommands) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	var swapchain vk.Swapchain
	ret := vk.CreateSwapchain(c.device, info, nil, &swapchain)
	return swapchain, NewError(ret)
}

func (c *vulkanCommands) DestroySwapchain(swapchain vk.Swapchain) {
	vk.DestroySwapchain(c.device, swapchain, nil)
}

func (c *vulkanCommands) GetSwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error) {
	var count uint32
	ret := vk.GetSwapchainImages(c.device, swapchain, &count, nil)
	if isError(ret) {
		return nil, NewError(ret)
	}
	images := make([]vk.Image, count)
	ret = vk.GetSwapchainImages(c.device, swapchain, &count, images)
	return images[:count], NewError(ret)
}

func (c *vulkanCommands) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	var view vk.ImageView
	ret := vk.CreateImageView(c.device, info, nil, &view)
	return view, NewError(ret)
}

func (c *vulkanCommands) DestroyImageView(view vk.ImageView) {
	vk.DestroyImageView(c.device, view, nil)
}

func (c *vulkanCommands) DestroyImage(image vk.Image) {
	vk.DestroyImage(c.device, image, nil)
}

func (c *vulkanCommands) FreeMemory(memory vk.DeviceMemory) {
	vk.FreeMemory(c.device, memory, nil)
}

func (c *vulkanCommands) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	var renderPass vk.RenderPass
	ret := vk.CreateRenderPass(c.device, info, nil, &renderPass)
	return renderPass, NewError(ret)
}

func (c *vulkanCommands) DestroyRenderPass(renderPass vk.RenderPass) {
	vk.DestroyRenderPass(c.device, renderPass, nil)
}

func (c *vulkanCommands) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	var framebuffer vk.Framebuffer
	ret := vk.CreateFramebuffer(c.device, info, nil, &framebuffer)
	return framebuffer, NewError(ret)
}

func (c *vulkanCommands) DestroyFramebuffer(framebuffer vk.Framebuffer) {
	vk.DestroyFramebuffer(c.device, framebuffer, nil)
}

func (c *vulkanCommands) CreateSemaphore() (vk.Semaphore, error) {
	var semaphore vk.Semaphore
	ret := vk.CreateSemaphore(c.device, &vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}, nil, &semaphore)
	return semaphore, NewError(ret)
}

func (c *vulkanCommands) DestroySemaphore(semaphore vk.Semaphore) {
	vk.DestroySemaphore(c.device, semaphore, nil)
}

func (c *vulkanCommands) CreateFence(signaled bool) (vk.Fence, error) {
	var flags vk.FenceCreateFlags
	if signaled {
		flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	ret := vk.CreateFence(c.device, &vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: flags,
	}, nil, &fence)
	return fence, NewError(ret)
}

func (c *vulkanCommands) DestroyFence(fence vk.Fence) {
	vk.DestroyFence(c.device, fence, nil)
}

func (c *vulkanCommands) WaitForFence(fence vk.Fence, timeout uint64) vk.Result {
	return vk.WaitForFences(c.device, 1, []vk.Fence{fence}, vk.True, timeout)
}

func (c *vulkanCommands) ResetFence(fence vk.Fence) vk.Result {
	return vk.ResetFences(c.device, 1, []vk.Fence{fence})
}

func (c *vulkanCommands) AcquireNextImage(swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore) (uint32, vk.Result) {
	var index uint32
	ret := vk.AcquireNextImage(c.device, swapchain, timeout, semaphore, vk.NullFence, &index)
	return index, ret
}

func (c *vulkanCommands) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	return vk.QueueSubmit(queue, uint32(len(submits)), submits, fence)
}

func (c *vulkanCommands) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	return vk.QueuePresent(queue, info)
}

func (c *vulkanCommands) AllocateCommandBuffers(pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	ret := vk.AllocateCommandBuffers(c.device, &vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}, buffers)
	if isError(ret) {
		return nil, NewError(ret)
	}
	return buffers, nil
}

func (c *vulkanCommands) FreeCommandBuffers(pool vk.CommandPool, buffers []vk.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vk.FreeCommandBuffers(c.device, pool, uint32(len(buffers)), buffers)
}

func (c *vulkanCommands) DeviceWaitIdle() vk.Result {
	return vk.DeviceWaitIdle(c.device)
}
