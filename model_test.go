package vkframe

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestPackVertices(t *testing.T) {
	data := packVertices(TriangleVertices())
	require.Len(t, data, 3*vertexFloats)
	require.Equal(t, []float32{0, -0.5, 1, 0, 0}, []float32(data[:vertexFloats]))
	require.Equal(t, []float32{-0.5, 0.5, 0, 0, 1}, []float32(data[2*vertexFloats:]))

	raw := data.Data()
	require.Len(t, raw, data.Sizeof())
	require.Equal(t, 3*int(vertexStride), data.Sizeof())
	require.Equal(t, float32(-0.5), math.Float32frombits(binary.LittleEndian.Uint32(raw[4:8])))
}

func TestVertexDescriptions(t *testing.T) {
	require.Equal(t, uint32(20), vertexStride)

	bindings := VertexBindingDescriptions()
	require.Len(t, bindings, 1)
	require.Equal(t, vertexStride, bindings[0].Stride)
	require.Equal(t, vk.VertexInputRateVertex, bindings[0].InputRate)

	attributes := VertexAttributeDescriptions()
	require.Len(t, attributes, 2)
	require.Equal(t, vk.FormatR32g32Sfloat, attributes[0].Format)
	require.Equal(t, uint32(0), attributes[0].Offset)
	require.Equal(t, uint32(1), attributes[1].Location)
	require.Equal(t, vk.FormatR32g32b32Sfloat, attributes[1].Format)
	require.Equal(t, uint32(8), attributes[1].Offset)
}

func TestNewModelTooFewVertices(t *testing.T) {
	_, err := NewModel(nil, TriangleVertices()[:2])
	require.Error(t, err)
}
