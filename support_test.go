package vkframe

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestChooseImageCount(t *testing.T) {
	for _, tc := range []struct {
		min, max uint32
		want     uint32
	}{
		{2, 0, 3},
		{3, 3, 3},
		{1, 8, 2},
		{2, 3, 3},
		{4, 0, 5},
	} {
		t.Run(fmt.Sprintf("min=%d/max=%d", tc.min, tc.max), func(t *testing.T) {
			caps := vk.SurfaceCapabilities{MinImageCount: tc.min, MaxImageCount: tc.max}
			require.Equal(t, tc.want, chooseImageCount(caps))
		})
	}
}

func TestChooseSurfaceFormat(t *testing.T) {
	_, ok := chooseSurfaceFormat(nil)
	require.False(t, ok)

	preferred := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	other := vk.SurfaceFormat{Format: vk.FormatR8g8b8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	got, ok := chooseSurfaceFormat([]vk.SurfaceFormat{other, preferred})
	require.True(t, ok)
	require.Equal(t, preferred, got)

	got, ok = chooseSurfaceFormat([]vk.SurfaceFormat{other})
	require.True(t, ok)
	require.Equal(t, other, got)
}

func TestChoosePresentMode(t *testing.T) {
	require.Equal(t, vk.PresentModeMailbox,
		choosePresentMode([]vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}))
	require.Equal(t, vk.PresentModeFifo,
		choosePresentMode([]vk.PresentMode{vk.PresentModeImmediate, vk.PresentModeFifo}))
	require.Equal(t, vk.PresentModeFifo, choosePresentMode(nil))
}

func TestChooseExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 1024, Height: 768},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 2048, Height: 2048},
	}
	// A defined surface extent wins over the window.
	require.Equal(t, vk.Extent2D{Width: 1024, Height: 768},
		chooseExtent(caps, vk.Extent2D{Width: 10, Height: 10}))

	caps.CurrentExtent = vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32}
	require.Equal(t, vk.Extent2D{Width: 800, Height: 600},
		chooseExtent(caps, vk.Extent2D{Width: 800, Height: 600}))
	require.Equal(t, vk.Extent2D{Width: 2048, Height: 1},
		chooseExtent(caps, vk.Extent2D{Width: 5000, Height: 0}))
}

func TestClassifyResult(t *testing.T) {
	for _, tc := range []struct {
		res  vk.Result
		want Status
	}{
		{vk.Success, StatusSuccess},
		{vk.Suboptimal, StatusSuboptimal},
		{vk.ErrorOutOfDate, StatusOutOfDate},
		{vk.ErrorDeviceLost, StatusFatal},
		{vk.ErrorSurfaceLost, StatusFatal},
		{vk.Timeout, StatusFatal},
	} {
		t.Run(tc.want.String(), func(t *testing.T) {
			require.Equal(t, tc.want, ClassifyResult(tc.res))
		})
	}
}
