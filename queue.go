package vkframe

import vk "github.com/vulkan-go/vulkan"

func queueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	properties := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, properties)
	for i := range properties {
		properties[i].Deref()
	}
	return properties
}

// findQueueFamilies looks for a graphics family and a family able to present
// to surface, preferring one family that does both.
func findQueueFamilies(gpu vk.PhysicalDevice, surface vk.Surface) QueueFamilyIndices {
	var indices QueueFamilyIndices
	for i, family := range queueFamilyProperties(gpu) {
		index := uint32(i)
		if family.QueueCount == 0 {
			continue
		}
		graphics := family.QueueFlags&vk.QueueFlags(vk.QueueGraphicsBit) != 0

		var supportsPresent vk.Bool32
		vk.GetPhysicalDeviceSurfaceSupport(gpu, index, surface, &supportsPresent)
		present := supportsPresent.B()

		if graphics && present {
			return QueueFamilyIndices{
				GraphicsFamily:    index,
				PresentFamily:     index,
				HasGraphicsFamily: true,
				HasPresentFamily:  true,
			}
		}
		if graphics && !indices.HasGraphicsFamily {
			indices.GraphicsFamily = index
			indices.HasGraphicsFamily = true
		}
		if present && !indices.HasPresentFamily {
			indices.PresentFamily = index
			indices.HasPresentFamily = true
		}
	}
	return indices
}

// queueCreateInfos requests one queue per distinct family.
func queueCreateInfos(indices QueueFamilyIndices) []vk.DeviceQueueCreateInfo {
	families := []uint32{indices.GraphicsFamily}
	if indices.Separate() {
		families = append(families, indices.PresentFamily)
	}
	infos := make([]vk.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}
