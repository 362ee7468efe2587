package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Depth formats in order of preference.
var depthFormatCandidates = []vk.Format{
	vk.FormatD32Sfloat,
	vk.FormatD32SfloatS8Uint,
	vk.FormatD24UnormS8Uint,
}

func (sc *SwapChain) createImageViews() error {
	sc.imageViews = make([]vk.ImageView, len(sc.images))
	for i, image := range sc.images {
		view, err := sc.cmds.CreateImageView(imageViewInfo(image, sc.imageFormat, vk.ImageAspectColorBit))
		if err != nil {
			return errors.Wrapf(err, "create image view %d", i)
		}
		sc.imageViews[i] = view
	}
	return nil
}

func imageViewInfo(image vk.Image, format vk.Format, aspect vk.ImageAspectFlagBits) *vk.ImageViewCreateInfo {
	return &vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    image,
		ViewType: vk.ImageViewType2d,
		Format:   format,
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(aspect),
			LevelCount: 1,
			LayerCount: 1,
		},
	}
}

// renderPassInfo describes one color attachment in the swapchain format and
// one depth attachment, used by a single graphics subpass.
func renderPassInfo(colorFormat, depthFormat vk.Format) *vk.RenderPassCreateInfo {
	attachments := []vk.AttachmentDescription{
		{
			Format:         colorFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutPresentSrc,
		},
		{
			Format:         depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         vk.AttachmentLoadOpClear,
			StoreOp:        vk.AttachmentStoreOpDontCare,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  vk.ImageLayoutUndefined,
			FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	colorRefs := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}
	depthRef := vk.AttachmentReference{
		Attachment: 1,
		Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpasses := []vk.SubpassDescription{{
		PipelineBindPoint:       vk.PipelineBindPointGraphics,
		ColorAttachmentCount:    uint32(len(colorRefs)),
		PColorAttachments:       colorRefs,
		PDepthStencilAttachment: &depthRef,
	}}

	// Color and depth writes wait until the previous user of the attachment,
	// the presentation engine, is past the output and early fragment stages.
	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit)
	dependencies := []vk.SubpassDependency{{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  stages,
		SrcAccessMask: 0,
		DstStageMask:  stages,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}}

	return &vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    uint32(len(subpasses)),
		PSubpasses:      subpasses,
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
}

func (sc *SwapChain) createRenderPass() error {
	renderPass, err := sc.cmds.CreateRenderPass(renderPassInfo(sc.imageFormat, sc.depthFormat))
	if err != nil {
		return errors.Wrap(err, "create render pass")
	}
	sc.renderPass = renderPass
	return nil
}

func (sc *SwapChain) findDepthFormat() error {
	format, err := sc.device.FindSupportedFormat(depthFormatCandidates, vk.ImageTilingOptimal,
		vk.FormatFeatureFlags(vk.FormatFeatureDepthStencilAttachmentBit))
	if err != nil {
		return errors.Wrap(err, "find depth format")
	}
	sc.depthFormat = format
	return nil
}

// createDepthResources builds one device local depth image and view per
// swapchain image.
func (sc *SwapChain) createDepthResources() error {
	count := len(sc.images)
	sc.depthImages = make([]vk.Image, count)
	sc.depthMemories = make([]vk.DeviceMemory, count)
	sc.depthImageViews = make([]vk.ImageView, count)

	for i := 0; i < count; i++ {
		image, memory, err := sc.device.CreateImageWithInfo(&vk.ImageCreateInfo{
			SType:     vk.StructureTypeImageCreateInfo,
			ImageType: vk.ImageType2d,
			Format:    sc.depthFormat,
			Extent: vk.Extent3D{
				Width:  sc.extent.Width,
				Height: sc.extent.Height,
				Depth:  1,
			},
			MipLevels:     1,
			ArrayLayers:   1,
			Samples:       vk.SampleCount1Bit,
			Tiling:        vk.ImageTilingOptimal,
			Usage:         vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
			SharingMode:   vk.SharingModeExclusive,
			InitialLayout: vk.ImageLayoutUndefined,
		}, vk.MemoryPropertyDeviceLocalBit)
		if err != nil {
			return errors.Wrapf(err, "create depth image %d", i)
		}
		sc.depthImages[i] = image
		sc.depthMemories[i] = memory

		view, err := sc.cmds.CreateImageView(imageViewInfo(image, sc.depthFormat, vk.ImageAspectDepthBit))
		if err != nil {
			return errors.Wrapf(err, "create depth image view %d", i)
		}
		sc.depthImageViews[i] = view
	}
	return nil
}

func (sc *SwapChain) createFramebuffers() error {
	sc.framebuffers = make([]vk.Framebuffer, len(sc.images))
	for i := range sc.images {
		views := []vk.ImageView{sc.imageViews[i], sc.depthImageViews[i]}
		framebuffer, err := sc.cmds.CreateFramebuffer(&vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      sc.renderPass,
			AttachmentCount: uint32(len(views)),
			PAttachments:    views,
			Width:           sc.extent.Width,
			Height:          sc.extent.Height,
			Layers:          1,
		})
		if err != nil {
			return errors.Wrapf(err, "create framebuffer %d", i)
		}
		sc.framebuffers[i] = framebuffer
	}
	return nil
}

func (sc *SwapChain) destroyImageViews() {
	for i, view := range sc.imageViews {
		if view != vk.NullImageView {
			sc.cmds.DestroyImageView(view)
			sc.imageViews[i] = vk.NullImageView
		}
	}
	sc.imageViews = nil
}

func (sc *SwapChain) destroyDepthResources() {
	for i := range sc.depthImages {
		if i < len(sc.depthImageViews) && sc.depthImageViews[i] != vk.NullImageView {
			sc.cmds.DestroyImageView(sc.depthImageViews[i])
		}
		if sc.depthImages[i] != vk.NullImage {
			sc.cmds.DestroyImage(sc.depthImages[i])
		}
		if i < len(sc.depthMemories) && sc.depthMemories[i] != vk.NullDeviceMemory {
			sc.cmds.FreeMemory(sc.depthMemories[i])
		}
	}
	sc.depthImages = nil
	sc.depthMemories = nil
	sc.depthImageViews = nil
}

func (sc *SwapChain) destroyFramebuffers() {
	for _, framebuffer := range sc.framebuffers {
		if framebuffer != vk.NullFramebuffer {
			sc.cmds.DestroyFramebuffer(framebuffer)
		}
	}
	sc.framebuffers = nil
}
