package vkframe

import vk "github.com/vulkan-go/vulkan"

// Status is the frame loop's view of an acquire or present result.
type Status int

const (
	StatusSuccess Status = iota
	// StatusSuboptimal means the image is still usable but the chain no
	// longer matches the surface exactly.
	StatusSuboptimal
	// StatusOutOfDate means the chain can no longer present and must be rebuilt.
	StatusOutOfDate
	StatusFatal
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	default:
		return "fatal"
	}
}

func ClassifyResult(res vk.Result) Status {
	switch res {
	case vk.Success:
		return StatusSuccess
	case vk.Suboptimal:
		return StatusSuboptimal
	case vk.ErrorOutOfDate:
		return StatusOutOfDate
	default:
		return StatusFatal
	}
}

// chooseSurfaceFormat prefers BGRA8 UNORM in the sRGB nonlinear space and
// otherwise falls back to whatever the surface lists first.
func chooseSurfaceFormat(formats []vk.SurfaceFormat) (vk.SurfaceFormat, bool) {
	if len(formats) == 0 {
		return vk.SurfaceFormat{}, false
	}
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Unorm && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f, true
		}
	}
	return formats[0], true
}

// choosePresentMode picks mailbox when offered. FIFO is always available.
func choosePresentMode(modes []vk.PresentMode) vk.PresentMode {
	for _, mode := range modes {
		if mode == vk.PresentModeMailbox {
			InfoLog.Println("vulkan: present mode mailbox")
			return mode
		}
	}
	InfoLog.Println("vulkan: present mode v-sync (fifo)")
	return vk.PresentModeFifo
}

// chooseExtent uses the surface extent when the surface defines one, and
// otherwise clamps the window extent into the allowed range.
func chooseExtent(caps vk.SurfaceCapabilities, window vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != vk.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  clampUint32(window.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clampUint32(window.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// chooseImageCount asks for one image more than the minimum, capped at the
// maximum when the surface reports one. A maximum of 0 means unbounded.
func chooseImageCount(caps vk.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clampUint32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
