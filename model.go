package vkframe

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
	"github.com/xlab/linmath"
)

// Vertex is a 2D position with a per-vertex color.
type Vertex struct {
	Position mgl32.Vec2
	Color    mgl32.Vec3
}

const (
	vertexFloats = 5
	vertexStride = vertexFloats * uint32(unsafe.Sizeof(float32(0)))
)

func VertexBindingDescriptions() []vk.VertexInputBindingDescription {
	return []vk.VertexInputBindingDescription{{
		Binding:   0,
		Stride:    vertexStride,
		InputRate: vk.VertexInputRateVertex,
	}}
}

func VertexAttributeDescriptions() []vk.VertexInputAttributeDescription {
	return []vk.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: 0,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   0,
		},
		{
			Binding:  0,
			Location: 1,
			Format:   vk.FormatR32g32b32Sfloat,
			Offset:   2 * uint32(unsafe.Sizeof(float32(0))),
		},
	}
}

// packVertices interleaves position and color in binding 0 layout.
func packVertices(vertices []Vertex) linmath.ArrayFloat32 {
	data := make(linmath.ArrayFloat32, 0, len(vertices)*vertexFloats)
	for _, v := range vertices {
		data = append(data, v.Position[0], v.Position[1], v.Color[0], v.Color[1], v.Color[2])
	}
	return data
}

// TriangleVertices is the red, green and blue triangle of the first app.
func TriangleVertices() []Vertex {
	return []Vertex{
		{Position: mgl32.Vec2{0.0, -0.5}, Color: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec2{0.5, 0.5}, Color: mgl32.Vec3{0, 1, 0}},
		{Position: mgl32.Vec2{-0.5, 0.5}, Color: mgl32.Vec3{0, 0, 1}},
	}
}

// Model is a vertex buffer drawn as a triangle list.
type Model struct {
	buffer      *Buffer
	vertexCount uint32
}

func NewModel(device *CoreDevice, vertices []Vertex) (*Model, error) {
	if len(vertices) < 3 {
		return nil, errors.Errorf("vertex count must be at least 3, got %d", len(vertices))
	}
	data := packVertices(vertices)
	buffer, err := device.CreateBuffer(data.Data(), vk.BufferUsageVertexBufferBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit)
	if err != nil {
		return nil, errors.Wrap(err, "create vertex buffer")
	}
	return &Model{buffer: buffer, vertexCount: uint32(len(vertices))}, nil
}

func (m *Model) VertexCount() uint32 {
	return m.vertexCount
}

func (m *Model) Bind(cmd vk.CommandBuffer) {
	vk.CmdBindVertexBuffers(cmd, 0, 1, []vk.Buffer{m.buffer.Buffer}, []vk.DeviceSize{0})
}

func (m *Model) Draw(cmd vk.CommandBuffer) {
	vk.CmdDraw(cmd, m.vertexCount, 1, 0, 0)
}

func (m *Model) Destroy() {
	if m.buffer != nil {
		m.buffer.Destroy()
		m.buffer = nil
	}
}
