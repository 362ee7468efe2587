package vkframe

import (
	"testing"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewPipelineBuilder(t *testing.T) {
	pb := NewPipelineBuilder(vk.NullShaderModule, vk.NullShaderModule)

	require.Len(t, pb.shaderStages, 2)
	require.Equal(t, vk.ShaderStageVertexBit, pb.shaderStages[0].Stage)
	require.Equal(t, vk.ShaderStageFragmentBit, pb.shaderStages[1].Stage)
	require.Equal(t, "main\x00", pb.shaderStages[0].PName)

	require.Equal(t, vk.PrimitiveTopologyTriangleList, pb.inputAssembly.Topology)
	require.Equal(t, vk.PolygonModeFill, pb.rasterizer.PolygonMode)
	require.Equal(t, float32(1), pb.rasterizer.LineWidth)
	require.Equal(t, vk.SampleCount1Bit, pb.multisampling.RasterizationSamples)
	require.Equal(t, vk.Bool32(vk.True), pb.depthStencil.DepthTestEnable)
	require.Equal(t, vk.CompareOpLess, pb.depthStencil.DepthCompareOp)
	require.Equal(t, []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}, pb.dynamicStates)
	require.Equal(t, VertexAttributeDescriptions(), pb.attributes)
}
