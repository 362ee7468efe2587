package vkframe

import (
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// findMemoryType returns the first memory type allowed by typeBits whose
// property flags include all of properties.
func findMemoryType(props vk.PhysicalDeviceMemoryProperties, typeBits uint32, properties vk.MemoryPropertyFlagBits) (uint32, bool) {
	want := vk.MemoryPropertyFlags(properties)
	for i := uint32(0); i < props.MemoryTypeCount; i++ {
		if typeBits&(1<<i) == 0 {
			continue
		}
		props.MemoryTypes[i].Deref()
		if props.MemoryTypes[i].PropertyFlags&want == want {
			return i, true
		}
	}
	return 0, false
}

// Buffer is a buffer object with its backing memory.
type Buffer struct {
	// device for destroy purposes.
	device vk.Device
	Buffer vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
}

func (b *Buffer) Destroy() {
	if b.device == nil {
		return
	}
	vk.DestroyBuffer(b.device, b.Buffer, nil)
	vk.FreeMemory(b.device, b.Memory, nil)
	b.device = nil
}

// CreateBuffer creates a buffer of len(data) bytes in memory matching
// properties and, when the memory is host visible, copies data into it.
func (d *CoreDevice) CreateBuffer(data []byte, usage vk.BufferUsageFlagBits, properties vk.MemoryPropertyFlagBits) (*Buffer, error) {
	size := vk.DeviceSize(len(data))
	var buffer vk.Buffer
	ret := vk.CreateBuffer(d.device, &vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       vk.BufferUsageFlags(usage),
		SharingMode: vk.SharingModeExclusive,
	}, nil, &buffer)
	if err := NewError(ret); err != nil {
		return nil, errors.Wrap(err, "create buffer")
	}

	var memReqs vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.device, buffer, &memReqs)
	memReqs.Deref()

	memType, ok := findMemoryType(d.memoryProperties, memReqs.MemoryTypeBits, properties)
	if !ok {
		vk.DestroyBuffer(d.device, buffer, nil)
		return nil, errors.New("failed to find suitable memory type")
	}

	var memory vk.DeviceMemory
	ret = vk.AllocateMemory(d.device, &vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memType,
	}, nil, &memory)
	if err := NewError(ret); err != nil {
		vk.DestroyBuffer(d.device, buffer, nil)
		return nil, errors.Wrap(err, "allocate buffer memory")
	}
	vk.BindBufferMemory(d.device, buffer, memory, 0)

	b := &Buffer{device: d.device, Buffer: buffer, Memory: memory, Size: size}
	if len(data) == 0 || properties&vk.MemoryPropertyHostVisibleBit == 0 {
		return b, nil
	}

	var pData unsafe.Pointer
	ret = vk.MapMemory(d.device, memory, 0, size, 0, &pData)
	if err := NewError(ret); err != nil {
		b.Destroy()
		return nil, errors.Wrap(err, "map buffer memory")
	}
	if n := vk.Memcopy(pData, data); n != len(data) {
		WarnLog.Printf("vulkan warning: failed to copy data, %d != %d", n, len(data))
	}
	vk.UnmapMemory(d.device, memory)
	return b, nil
}
