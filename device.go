package vkframe

import vk "github.com/vulkan-go/vulkan"

// SwapChainSupport is what a surface reports it can do on the selected GPU.
type SwapChainSupport struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

// QueueFamilyIndices holds the graphics and present family of the selected GPU.
type QueueFamilyIndices struct {
	GraphicsFamily    uint32
	PresentFamily     uint32
	HasGraphicsFamily bool
	HasPresentFamily  bool
}

func (q QueueFamilyIndices) IsComplete() bool {
	return q.HasGraphicsFamily && q.HasPresentFamily
}

// Separate is true when presentation happens on another family than graphics.
func (q QueueFamilyIndices) Separate() bool {
	return q.GraphicsFamily != q.PresentFamily
}

// Device is the capability provider a SwapChain and a FrameLoop are built
// against. CoreDevice is the GPU backed implementation.
type Device interface {
	// Device gets the Vulkan logical device.
	Device() vk.Device
	// Commands gets the Vulkan command surface bound to the logical device.
	Commands() Commands
	// GraphicsQueue gets the queue command buffers are submitted to.
	GraphicsQueue() vk.Queue
	// PresentQueue gets the queue images are presented on.
	PresentQueue() vk.Queue
	// Surface gets the presentation surface.
	Surface() vk.Surface
	// CommandPool gets the pool frame command buffers are allocated from.
	CommandPool() vk.CommandPool

	GetSwapChainSupport() SwapChainSupport
	FindPhysicalQueueFamilies() QueueFamilyIndices
	// CreateImageWithInfo creates an image and binds freshly allocated memory
	// matching properties to it.
	CreateImageWithInfo(info *vk.ImageCreateInfo, properties vk.MemoryPropertyFlagBits) (vk.Image, vk.DeviceMemory, error)
	// FindSupportedFormat returns the first candidate whose tiling features
	// include features.
	FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error)
}
