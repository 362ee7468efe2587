package vkframe

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// SurfaceProvider is the window side of device creation.
type SurfaceProvider interface {
	RequiredInstanceExtensions() []string
	CreateSurface(instance vk.Instance) (vk.Surface, error)
}

// CoreDevice is the GPU backed Device. It owns the instance, the surface, the
// logical device with its queues and the command pool frames allocate from.
type CoreDevice struct {
	instance      vk.Instance
	debugCallback vk.DebugReportCallback
	surface       vk.Surface
	gpu           vk.PhysicalDevice
	device        vk.Device
	commands      Commands

	families      QueueFamilyIndices
	graphicsQueue vk.Queue
	presentQueue  vk.Queue
	commandPool   vk.CommandPool

	gpuProperties    vk.PhysicalDeviceProperties
	memoryProperties vk.PhysicalDeviceMemoryProperties
	validationLayers []string
}

// NewCoreDevice creates the Vulkan instance and selects the first GPU able to
// present to the surface of window. Validation layers and the debug report
// callback are enabled when cfg.EnableValidation is set.
func NewCoreDevice(cfg Config, window SurfaceProvider) (dev *CoreDevice, err error) {
	d := &CoreDevice{
		debugCallback: vk.NullDebugReportCallback,
		surface:       vk.NullSurface,
		commandPool:   vk.NullCommandPool,
	}
	defer func() {
		if err != nil {
			d.Destroy()
		}
	}()

	if err := d.createInstance(cfg, window.RequiredInstanceExtensions()); err != nil {
		return nil, err
	}
	if cfg.EnableValidation {
		if err := d.setupDebugCallback(); err != nil {
			return nil, err
		}
	}
	surface, err := window.CreateSurface(d.instance)
	if err != nil {
		return nil, errors.Wrap(err, "create window surface")
	}
	d.surface = surface

	if err := d.pickPhysicalDevice(); err != nil {
		return nil, err
	}
	if err := d.createLogicalDevice(); err != nil {
		return nil, err
	}
	if err := d.createCommandPool(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *CoreDevice) createInstance(cfg Config, required []string) error {
	actualExtensions, err := InstanceExtensions()
	if err != nil {
		return errors.Wrap(err, "enumerate instance extensions")
	}
	wanted := append([]string{}, required...)
	if cfg.EnableValidation {
		wanted = append(wanted, DebugReportExtension)
	}
	instanceExtensions, missing := checkExisting(actualExtensions, wanted)
	if missing > 0 {
		WarnLog.Println("vulkan warning: missing", missing, "required instance extensions during init")
	}
	InfoLog.Printf("vulkan: enabling %d instance extensions", len(instanceExtensions))

	if cfg.EnableValidation {
		actualLayers, err := ValidationLayers()
		if err != nil {
			return errors.Wrap(err, "enumerate validation layers")
		}
		layers, missing := checkExisting(actualLayers, []string{ValidationLayer})
		if missing > 0 {
			return errors.New("validation layers requested, but not available")
		}
		d.validationLayers = layers
	}

	var instance vk.Instance
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(cfg.Title),
			PEngineName:        "vkframe\x00",
		},
		EnabledExtensionCount:   uint32(len(instanceExtensions)),
		PpEnabledExtensionNames: instanceExtensions,
		EnabledLayerCount:       uint32(len(d.validationLayers)),
		PpEnabledLayerNames:     d.validationLayers,
	}, nil, &instance)
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "create instance")
	}
	d.instance = instance
	return errors.Wrap(vk.InitInstance(instance), "init instance")
}

func (d *CoreDevice) setupDebugCallback() error {
	ret := vk.CreateDebugReportCallback(d.instance, &vk.DebugReportCallbackCreateInfo{
		SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
		PfnCallback: dbgCallbackFunc,
	}, nil, &d.debugCallback)
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "create debug report callback")
	}
	InfoLog.Println("vulkan: DebugReportCallback enabled")
	return nil
}

func (d *CoreDevice) pickPhysicalDevice() error {
	var gpuCount uint32
	ret := vk.EnumeratePhysicalDevices(d.instance, &gpuCount, nil)
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "enumerate physical devices")
	}
	if gpuCount == 0 {
		return errors.New("failed to find GPUs with Vulkan support")
	}
	gpus := make([]vk.PhysicalDevice, gpuCount)
	ret = vk.EnumeratePhysicalDevices(d.instance, &gpuCount, gpus)
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "enumerate physical devices")
	}

	for _, gpu := range gpus {
		if families, ok := d.isDeviceSuitable(gpu); ok {
			d.gpu = gpu
			d.families = families
			break
		}
	}
	if d.gpu == nil {
		return errors.New("failed to find a suitable GPU")
	}

	vk.GetPhysicalDeviceProperties(d.gpu, &d.gpuProperties)
	d.gpuProperties.Deref()
	vk.GetPhysicalDeviceMemoryProperties(d.gpu, &d.memoryProperties)
	d.memoryProperties.Deref()
	InfoLog.Printf("vulkan: physical device %s", vk.ToString(d.gpuProperties.DeviceName[:]))
	return nil
}

func (d *CoreDevice) isDeviceSuitable(gpu vk.PhysicalDevice) (QueueFamilyIndices, bool) {
	families := findQueueFamilies(gpu, d.surface)
	if !families.IsComplete() {
		return families, false
	}
	extensions, err := DeviceExtensions(gpu)
	if err != nil || !hasAll(extensions, []string{SwapchainExtension}) {
		return families, false
	}
	support := querySwapChainSupport(gpu, d.surface)
	return families, len(support.Formats) > 0 && len(support.PresentModes) > 0
}

func (d *CoreDevice) createLogicalDevice() error {
	queueInfos := queueCreateInfos(d.families)
	deviceExtensions := safeStrings([]string{SwapchainExtension})

	var device vk.Device
	ret := vk.CreateDevice(d.gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		EnabledExtensionCount:   uint32(len(deviceExtensions)),
		PpEnabledExtensionNames: deviceExtensions,
		EnabledLayerCount:       uint32(len(d.validationLayers)),
		PpEnabledLayerNames:     d.validationLayers,
	}, nil, &device)
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "create logical device")
	}
	d.device = device
	d.commands = NewCommands(device)

	vk.GetDeviceQueue(device, d.families.GraphicsFamily, 0, &d.graphicsQueue)
	vk.GetDeviceQueue(device, d.families.PresentFamily, 0, &d.presentQueue)
	return nil
}

func (d *CoreDevice) createCommandPool() error {
	var pool vk.CommandPool
	ret := vk.CreateCommandPool(d.device, &vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: d.families.GraphicsFamily,
		Flags: vk.CommandPoolCreateFlags(vk.CommandPoolCreateTransientBit |
			vk.CommandPoolCreateResetCommandBufferBit),
	}, nil, &pool)
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "create command pool")
	}
	d.commandPool = pool
	return nil
}

func querySwapChainSupport(gpu vk.PhysicalDevice, surface vk.Surface) SwapChainSupport {
	var support SwapChainSupport
	vk.GetPhysicalDeviceSurfaceCapabilities(gpu, surface, &support.Capabilities)
	support.Capabilities.Deref()
	support.Capabilities.CurrentExtent.Deref()
	support.Capabilities.MinImageExtent.Deref()
	support.Capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, nil)
	if formatCount > 0 {
		support.Formats = make([]vk.SurfaceFormat, formatCount)
		vk.GetPhysicalDeviceSurfaceFormats(gpu, surface, &formatCount, support.Formats)
		for i := range support.Formats {
			support.Formats[i].Deref()
		}
	}

	var modeCount uint32
	vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, nil)
	if modeCount > 0 {
		support.PresentModes = make([]vk.PresentMode, modeCount)
		vk.GetPhysicalDeviceSurfacePresentModes(gpu, surface, &modeCount, support.PresentModes)
	}
	return support
}

func (d *CoreDevice) Device() vk.Device {
	return d.device
}

func (d *CoreDevice) Commands() Commands {
	return d.commands
}

func (d *CoreDevice) GraphicsQueue() vk.Queue {
	return d.graphicsQueue
}

func (d *CoreDevice) PresentQueue() vk.Queue {
	return d.presentQueue
}

func (d *CoreDevice) Surface() vk.Surface {
	return d.surface
}

func (d *CoreDevice) CommandPool() vk.CommandPool {
	return d.commandPool
}

func (d *CoreDevice) Properties() vk.PhysicalDeviceProperties {
	return d.gpuProperties
}

func (d *CoreDevice) GetSwapChainSupport() SwapChainSupport {
	return querySwapChainSupport(d.gpu, d.surface)
}

func (d *CoreDevice) FindPhysicalQueueFamilies() QueueFamilyIndices {
	return d.families
}

func (d *CoreDevice) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error) {
	for _, format := range candidates {
		var props vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(d.gpu, format, &props)
		props.Deref()
		switch {
		case tiling == vk.ImageTilingLinear && props.LinearTilingFeatures&features == features:
			return format, nil
		case tiling == vk.ImageTilingOptimal && props.OptimalTilingFeatures&features == features:
			return format, nil
		}
	}
	return vk.FormatUndefined, errors.New("failed to find supported format")
}

func (d *CoreDevice) CreateImageWithInfo(info *vk.ImageCreateInfo, properties vk.MemoryPropertyFlagBits) (vk.Image, vk.DeviceMemory, error) {
	var image vk.Image
	if err := NewError(vk.CreateImage(d.device, info, nil, &image)); err != nil {
		return vk.NullImage, vk.NullDeviceMemory, errors.Wrap(err, "create image")
	}

	var memReqs vk.MemoryRequirements
	vk.GetImageMemoryRequirements(d.device, image, &memReqs)
	memReqs.Deref()

	memType, ok := findMemoryType(d.memoryProperties, memReqs.MemoryTypeBits, properties)
	if !ok {
		vk.DestroyImage(d.device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, errors.New("failed to find suitable memory type")
	}

	var memory vk.DeviceMemory
	ret := vk.AllocateMemory(d.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if err := NewError(ret); err != nil {
		vk.DestroyImage(d.device, image, nil)
		return vk.NullImage, vk.NullDeviceMemory, errors.Wrap(err, "allocate image memory")
	}
	if err := NewError(vk.BindImageMemory(d.device, image, memory, 0)); err != nil {
		vk.DestroyImage(d.device, image, nil)
		vk.FreeMemory(d.device, memory, nil)
		return vk.NullImage, vk.NullDeviceMemory, errors.Wrap(err, "bind image memory")
	}
	return image, memory, nil
}

// Destroy tears the device down in reverse creation order. Safe on a device
// whose construction failed.
func (d *CoreDevice) Destroy() {
	if d.device != nil {
		vk.DeviceWaitIdle(d.device)
		if d.commandPool != vk.NullCommandPool {
			vk.DestroyCommandPool(d.device, d.commandPool, nil)
			d.commandPool = vk.NullCommandPool
		}
		vk.DestroyDevice(d.device, nil)
		d.device = nil
	}
	if d.instance == nil {
		return
	}
	if d.debugCallback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(d.instance, d.debugCallback, nil)
		d.debugCallback = vk.NullDebugReportCallback
	}
	if d.surface != vk.NullSurface {
		vk.DestroySurface(d.instance, d.surface, nil)
		d.surface = vk.NullSurface
	}
	vk.DestroyInstance(d.instance, nil)
	d.instance = nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType,
	object uint64, location uint, messageCode int32, pLayerPrefix string,
	pMessage string, pUserData unsafe.Pointer) vk.Bool32 {

	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		ErrorLog.Printf("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		WarnLog.Printf("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		WarnLog.Printf("PERFORMANCE [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		InfoLog.Printf("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
