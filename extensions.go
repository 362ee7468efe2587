package vkframe

import (
	"unsafe"

	vk "github.com/vulkan-go/vulkan"
)

// Layer and extension names the device setup asks for.
const (
	ValidationLayer      = "VK_LAYER_KHRONOS_validation"
	DebugReportExtension = "VK_EXT_debug_report"
	SwapchainExtension   = "VK_KHR_swapchain"
)

// enumerate runs the two-call enumeration of the Vulkan API: count first,
// then fill. vk.Incomplete means the set grew in between, so it starts over.
func enumerate[T any](query func(count *uint32, list []T) vk.Result) (list []T, err error) {
	defer checkErr(&err)

	for {
		var count uint32
		orPanic(NewError(query(&count, nil)))
		list = make([]T, count)
		ret := query(&count, list)
		if ret == vk.Incomplete {
			continue
		}
		orPanic(NewError(ret))
		return list[:count], nil
	}
}

func extensionNames(list []vk.ExtensionProperties) []string {
	names := make([]string, 0, len(list))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names
}

// InstanceExtensions lists the instance extensions the loader offers.
func InstanceExtensions() ([]string, error) {
	list, err := enumerate(func(count *uint32, list []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateInstanceExtensionProperties("", count, list)
	})
	return extensionNames(list), err
}

// DeviceExtensions lists the extensions of gpu.
func DeviceExtensions(gpu vk.PhysicalDevice) ([]string, error) {
	list, err := enumerate(func(count *uint32, list []vk.ExtensionProperties) vk.Result {
		return vk.EnumerateDeviceExtensionProperties(gpu, "", count, list)
	})
	return extensionNames(list), err
}

func ValidationLayers() ([]string, error) {
	list, err := enumerate(vk.EnumerateInstanceLayerProperties)
	names := make([]string, 0, len(list))
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

// checkExisting returns the wanted names that are present in actual,
// null terminated for the loader, and how many were missing.
func checkExisting(actual, wanted []string) (existing []string, missing int) {
	have := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		have[safeString(name)] = struct{}{}
	}
	for _, name := range wanted {
		name = safeString(name)
		if _, ok := have[name]; ok {
			existing = append(existing, name)
		} else {
			missing++
		}
	}
	return existing, missing
}

func hasAll(actual, wanted []string) bool {
	_, missing := checkExisting(actual, wanted)
	return missing == 0
}

// safeString null terminates s for the Vulkan loader.
func safeString(s string) string {
	if len(s) == 0 || s[len(s)-1] != '\x00' {
		return s + "\x00"
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

// sliceUint32 reinterprets SPIR-V bytes as the words vk.ShaderModuleCreateInfo
// expects. len(data) must be a multiple of 4.
func sliceUint32(data []byte) []uint32 {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}
