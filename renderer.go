package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

var clearColor = []float32{0.1, 0.1, 0.1, 1.0}

// ModelRenderer draws a single Model with the simple shader pair. The
// pipeline is tied to the swapchain render pass and is rebuilt in Prepare.
type ModelRenderer struct {
	device *CoreDevice
	model  *Model

	vertShader vk.ShaderModule
	fragShader vk.ShaderModule
	layout     vk.PipelineLayout
	pipeline   vk.Pipeline
}

func NewModelRenderer(device *CoreDevice, model *Model, cfg Config) (r *ModelRenderer, err error) {
	r = &ModelRenderer{
		device:     device,
		model:      model,
		vertShader: vk.NullShaderModule,
		fragShader: vk.NullShaderModule,
		layout:     vk.NullPipelineLayout,
		pipeline:   vk.NullPipeline,
	}
	defer func() {
		if err != nil {
			r.Destroy()
			r = nil
		}
	}()

	if r.vertShader, err = LoadShaderFile(device.Device(), cfg.VertexShader); err != nil {
		return
	}
	if r.fragShader, err = LoadShaderFile(device.Device(), cfg.FragmentShader); err != nil {
		return
	}
	r.layout, err = CreatePipelineLayout(device.Device())
	return
}

func (r *ModelRenderer) Prepare(sc *SwapChain) error {
	r.destroyPipeline()
	pipeline, err := NewPipelineBuilder(r.vertShader, r.fragShader).
		Build(r.device.Device(), sc.GetRenderPass(), r.layout)
	if err != nil {
		return err
	}
	r.pipeline = pipeline
	return nil
}

func (r *ModelRenderer) Record(cmd vk.CommandBuffer, sc *SwapChain, imageIndex uint32) error {
	if err := NewError(vk.ResetCommandBuffer(cmd, 0)); err != nil {
		return errors.Wrap(err, "reset command buffer")
	}
	ret := vk.BeginCommandBuffer(cmd, &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	})
	if err := NewError(ret); err != nil {
		return errors.Wrap(err, "begin command buffer")
	}

	extent := sc.GetSwapChainExtent()
	clearValues := []vk.ClearValue{
		vk.NewClearValue(clearColor),
		vk.NewClearDepthStencil(1.0, 0),
	}
	vk.CmdBeginRenderPass(cmd, &vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  sc.GetRenderPass(),
		Framebuffer: sc.GetFrameBuffer(int(imageIndex)),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}, vk.SubpassContentsInline)

	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{Extent: extent}})

	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, r.pipeline)
	r.model.Bind(cmd)
	r.model.Draw(cmd)

	vk.CmdEndRenderPass(cmd)
	return errors.Wrap(NewError(vk.EndCommandBuffer(cmd)), "end command buffer")
}

func (r *ModelRenderer) destroyPipeline() {
	if r.pipeline != vk.NullPipeline {
		vk.DestroyPipeline(r.device.Device(), r.pipeline, nil)
		r.pipeline = vk.NullPipeline
	}
}

// Destroy releases the pipeline objects. The model is not owned.
func (r *ModelRenderer) Destroy() {
	dev := r.device.Device()
	r.destroyPipeline()
	if r.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(dev, r.layout, nil)
		r.layout = vk.NullPipelineLayout
	}
	if r.vertShader != vk.NullShaderModule {
		vk.DestroyShaderModule(dev, r.vertShader, nil)
		r.vertShader = vk.NullShaderModule
	}
	if r.fragShader != vk.NullShaderModule {
		vk.DestroyShaderModule(dev, r.fragShader, nil)
		r.fragShader = vk.NullShaderModule
	}
}
