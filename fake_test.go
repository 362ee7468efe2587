package vkframe

import (
	"fmt"
	"io"
	"os"
	"testing"
	"unsafe"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

func TestMain(m *testing.M) {
	SetLogOutput(io.Discard)
	os.Exit(m.Run())
}

var errInjected = errors.New("injected failure")

// forged pins every fake handle. The GC does not trace vk handle types, so an
// unpinned allocation could be reused and two handles would compare equal.
var forged []unsafe.Pointer

// fakeHandle forges a unique non null handle value. It is never dereferenced.
// vk handles hold these as notinheap pointers, so tests must compare them with
// == and never pass them to testify's equality helpers.
func fakeHandle() unsafe.Pointer {
	p := unsafe.Pointer(new(int64))
	forged = append(forged, p)
	return p
}

type fakeSubmit struct {
	cmd             vk.CommandBuffer
	fence           vk.Fence
	waitSemaphore   vk.Semaphore
	signalSemaphore vk.Semaphore
}

type fakePresent struct {
	swapchain vk.Swapchain
	index     uint32
	wait      vk.Semaphore
}

// fakeCommands records every call as an op and tracks which handles are alive.
type fakeCommands struct {
	ops      []string
	problems []string

	live     map[unsafe.Pointer]string
	labels   map[unsafe.Pointer]string
	attempts map[string]int
	created  map[string]int

	// fail makes the n-th create of a kind fail, counting from 1.
	fail map[string]int

	// imageCount overrides the number of images per swapchain when non zero.
	imageCount     int
	swapchainInfos []vk.SwapchainCreateInfo
	swapchains     []vk.Swapchain
	imagesByChain  map[unsafe.Pointer][]vk.Image
	nextImage      uint32

	acquireIndices []uint32
	acquireResults []vk.Result
	presentResults []vk.Result
	submitResult   vk.Result
	waitResult     vk.Result

	submits  []fakeSubmit
	presents []fakePresent
	waitIdle int
}

func newFakeCommands() *fakeCommands {
	return &fakeCommands{
		live:          make(map[unsafe.Pointer]string),
		labels:        make(map[unsafe.Pointer]string),
		attempts:      make(map[string]int),
		created:       make(map[string]int),
		fail:          make(map[string]int),
		imagesByChain: make(map[unsafe.Pointer][]vk.Image),
		submitResult:  vk.Success,
		waitResult:    vk.Success,
	}
}

func (f *fakeCommands) create(kind string) (unsafe.Pointer, error) {
	f.attempts[kind]++
	if n, ok := f.fail[kind]; ok && f.attempts[kind] == n {
		f.ops = append(f.ops, "fail "+kind)
		return nil, errInjected
	}
	f.created[kind]++
	p := fakeHandle()
	f.live[p] = kind
	f.labels[p] = fmt.Sprintf("%s%d", kind, f.created[kind])
	f.ops = append(f.ops, "create "+f.labels[p])
	return p, nil
}

func (f *fakeCommands) release(kind string, p unsafe.Pointer) {
	if p == nil {
		f.problems = append(f.problems, "destroy null "+kind)
		return
	}
	got, ok := f.live[p]
	switch {
	case !ok:
		f.problems = append(f.problems, "destroy dead "+f.label(p))
	case got != kind:
		f.problems = append(f.problems, fmt.Sprintf("destroy %s as %s", f.label(p), kind))
	}
	delete(f.live, p)
	f.ops = append(f.ops, "destroy "+f.label(p))
}

func (f *fakeCommands) label(p unsafe.Pointer) string {
	if l, ok := f.labels[p]; ok {
		return l
	}
	return "unknown"
}

func (f *fakeCommands) liveCount(kind string) int {
	n := 0
	for _, k := range f.live {
		if k == kind {
			n++
		}
	}
	return n
}

func (f *fakeCommands) CreateSwapchain(info *vk.SwapchainCreateInfo) (vk.Swapchain, error) {
	p, err := f.create("swapchain")
	if err != nil {
		return vk.NullSwapchain, err
	}
	f.swapchainInfos = append(f.swapchainInfos, *info)
	count := int(info.MinImageCount)
	if f.imageCount > 0 {
		count = f.imageCount
	}
	images := make([]vk.Image, count)
	for i := range images {
		images[i] = vk.Image(fakeHandle())
	}
	f.imagesByChain[p] = images
	f.nextImage = 0
	f.swapchains = append(f.swapchains, vk.Swapchain(p))
	return vk.Swapchain(p), nil
}

func (f *fakeCommands) DestroySwapchain(swapchain vk.Swapchain) {
	f.release("swapchain", unsafe.Pointer(swapchain))
}

func (f *fakeCommands) GetSwapchainImages(swapchain vk.Swapchain) ([]vk.Image, error) {
	images, ok := f.imagesByChain[unsafe.Pointer(swapchain)]
	if !ok {
		return nil, errors.New("unknown swapchain")
	}
	return images, nil
}

func (f *fakeCommands) CreateImageView(info *vk.ImageViewCreateInfo) (vk.ImageView, error) {
	p, err := f.create("image view")
	return vk.ImageView(p), err
}

func (f *fakeCommands) DestroyImageView(view vk.ImageView) {
	f.release("image view", unsafe.Pointer(view))
}

func (f *fakeCommands) DestroyImage(image vk.Image) {
	f.release("image", unsafe.Pointer(image))
}

func (f *fakeCommands) FreeMemory(memory vk.DeviceMemory) {
	f.release("memory", unsafe.Pointer(memory))
}

func (f *fakeCommands) CreateRenderPass(info *vk.RenderPassCreateInfo) (vk.RenderPass, error) {
	p, err := f.create("render pass")
	return vk.RenderPass(p), err
}

func (f *fakeCommands) DestroyRenderPass(renderPass vk.RenderPass) {
	f.release("render pass", unsafe.Pointer(renderPass))
}

func (f *fakeCommands) CreateFramebuffer(info *vk.FramebufferCreateInfo) (vk.Framebuffer, error) {
	p, err := f.create("framebuffer")
	return vk.Framebuffer(p), err
}

func (f *fakeCommands) DestroyFramebuffer(framebuffer vk.Framebuffer) {
	f.release("framebuffer", unsafe.Pointer(framebuffer))
}

func (f *fakeCommands) CreateSemaphore() (vk.Semaphore, error) {
	p, err := f.create("semaphore")
	return vk.Semaphore(p), err
}

func (f *fakeCommands) DestroySemaphore(semaphore vk.Semaphore) {
	f.release("semaphore", unsafe.Pointer(semaphore))
}

func (f *fakeCommands) CreateFence(signaled bool) (vk.Fence, error) {
	if !signaled {
		f.problems = append(f.problems, "fence created unsignaled")
	}
	p, err := f.create("fence")
	return vk.Fence(p), err
}

func (f *fakeCommands) DestroyFence(fence vk.Fence) {
	f.release("fence", unsafe.Pointer(fence))
}

func (f *fakeCommands) WaitForFence(fence vk.Fence, timeout uint64) vk.Result {
	f.ops = append(f.ops, "wait "+f.label(unsafe.Pointer(fence)))
	return f.waitResult
}

func (f *fakeCommands) ResetFence(fence vk.Fence) vk.Result {
	f.ops = append(f.ops, "reset "+f.label(unsafe.Pointer(fence)))
	return vk.Success
}

func (f *fakeCommands) AcquireNextImage(swapchain vk.Swapchain, timeout uint64, semaphore vk.Semaphore) (uint32, vk.Result) {
	f.ops = append(f.ops, "acquire "+f.label(unsafe.Pointer(swapchain)))
	res := vk.Success
	if len(f.acquireResults) > 0 {
		res = f.acquireResults[0]
		f.acquireResults = f.acquireResults[1:]
	}
	if len(f.acquireIndices) > 0 {
		idx := f.acquireIndices[0]
		f.acquireIndices = f.acquireIndices[1:]
		return idx, res
	}
	count := uint32(len(f.imagesByChain[unsafe.Pointer(swapchain)]))
	idx := f.nextImage
	if count > 0 {
		f.nextImage = (f.nextImage + 1) % count
	}
	return idx, res
}

func (f *fakeCommands) QueueSubmit(queue vk.Queue, submits []vk.SubmitInfo, fence vk.Fence) vk.Result {
	f.ops = append(f.ops, "submit "+f.label(unsafe.Pointer(fence)))
	s := submits[0]
	f.submits = append(f.submits, fakeSubmit{
		cmd:             s.PCommandBuffers[0],
		fence:           fence,
		waitSemaphore:   s.PWaitSemaphores[0],
		signalSemaphore: s.PSignalSemaphores[0],
	})
	return f.submitResult
}

func (f *fakeCommands) QueuePresent(queue vk.Queue, info *vk.PresentInfo) vk.Result {
	f.ops = append(f.ops, fmt.Sprintf("present %d", info.PImageIndices[0]))
	f.presents = append(f.presents, fakePresent{
		swapchain: info.PSwapchains[0],
		index:     info.PImageIndices[0],
		wait:      info.PWaitSemaphores[0],
	})
	if len(f.presentResults) > 0 {
		res := f.presentResults[0]
		f.presentResults = f.presentResults[1:]
		return res
	}
	return vk.Success
}

func (f *fakeCommands) AllocateCommandBuffers(pool vk.CommandPool, count uint32) ([]vk.CommandBuffer, error) {
	buffers := make([]vk.CommandBuffer, count)
	for i := range buffers {
		p, err := f.create("command buffer")
		if err != nil {
			for _, b := range buffers[:i] {
				f.release("command buffer", unsafe.Pointer(b))
			}
			return nil, err
		}
		buffers[i] = vk.CommandBuffer(p)
	}
	return buffers, nil
}

func (f *fakeCommands) FreeCommandBuffers(pool vk.CommandPool, buffers []vk.CommandBuffer) {
	for _, b := range buffers {
		f.release("command buffer", unsafe.Pointer(b))
	}
}

func (f *fakeCommands) DeviceWaitIdle() vk.Result {
	f.waitIdle++
	f.ops = append(f.ops, "wait idle")
	return vk.Success
}

// fakeDevice is a capability provider backed by fakeCommands.
type fakeDevice struct {
	cmds     *fakeCommands
	support  SwapChainSupport
	families QueueFamilyIndices

	depthFormat vk.Format
	depthErr    error
	depthQuery  []vk.Format

	graphics vk.Queue
	present  vk.Queue
	surface  vk.Surface
	pool     vk.CommandPool
}

func defaultSupport() SwapChainSupport {
	return SwapChainSupport{
		Capabilities: vk.SurfaceCapabilities{
			MinImageCount:    2,
			MaxImageCount:    0,
			CurrentExtent:    vk.Extent2D{Width: vk.MaxUint32, Height: vk.MaxUint32},
			MinImageExtent:   vk.Extent2D{Width: 1, Height: 1},
			MaxImageExtent:   vk.Extent2D{Width: 4096, Height: 4096},
			CurrentTransform: vk.SurfaceTransformIdentityBit,
		},
		Formats: []vk.SurfaceFormat{
			{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear},
		},
		PresentModes: []vk.PresentMode{vk.PresentModeFifo},
	}
}

func newFakeDevice() *fakeDevice {
	q := vk.Queue(fakeHandle())
	return &fakeDevice{
		cmds:    newFakeCommands(),
		support: defaultSupport(),
		families: QueueFamilyIndices{
			HasGraphicsFamily: true,
			HasPresentFamily:  true,
		},
		depthFormat: vk.FormatD32Sfloat,
		graphics:    q,
		present:     q,
		surface:     vk.Surface(fakeHandle()),
		pool:        vk.CommandPool(fakeHandle()),
	}
}

func (d *fakeDevice) Device() vk.Device {
	return nil
}

func (d *fakeDevice) Commands() Commands {
	return d.cmds
}

func (d *fakeDevice) GraphicsQueue() vk.Queue {
	return d.graphics
}

func (d *fakeDevice) PresentQueue() vk.Queue {
	return d.present
}

func (d *fakeDevice) Surface() vk.Surface {
	return d.surface
}

func (d *fakeDevice) CommandPool() vk.CommandPool {
	return d.pool
}

func (d *fakeDevice) GetSwapChainSupport() SwapChainSupport {
	return d.support
}

func (d *fakeDevice) FindPhysicalQueueFamilies() QueueFamilyIndices {
	return d.families
}

func (d *fakeDevice) CreateImageWithInfo(info *vk.ImageCreateInfo, properties vk.MemoryPropertyFlagBits) (vk.Image, vk.DeviceMemory, error) {
	image, err := d.cmds.create("image")
	if err != nil {
		return vk.NullImage, vk.NullDeviceMemory, err
	}
	memory, err := d.cmds.create("memory")
	if err != nil {
		d.cmds.release("image", image)
		return vk.NullImage, vk.NullDeviceMemory, err
	}
	return vk.Image(image), vk.DeviceMemory(memory), nil
}

func (d *fakeDevice) FindSupportedFormat(candidates []vk.Format, tiling vk.ImageTiling, features vk.FormatFeatureFlags) (vk.Format, error) {
	d.depthQuery = candidates
	if d.depthErr != nil {
		return vk.FormatUndefined, d.depthErr
	}
	return d.depthFormat, nil
}

// fakeWindow reports extents[0]. WaitEvents drops the head of extents while
// more than one remains.
type fakeWindow struct {
	extents []vk.Extent2D
	resized bool
	resets  int
	waits   int
	polls   int

	// closeAfter makes ShouldClose report true after that many calls.
	closeAfter int
	closeCalls int
	onWait     func()
}

func newFakeWindow(width, height uint32) *fakeWindow {
	return &fakeWindow{extents: []vk.Extent2D{{Width: width, Height: height}}}
}

func (w *fakeWindow) Extent() vk.Extent2D {
	return w.extents[0]
}

func (w *fakeWindow) WasResized() bool {
	return w.resized
}

func (w *fakeWindow) ResetResized() {
	w.resets++
	w.resized = false
}

func (w *fakeWindow) ShouldClose() bool {
	w.closeCalls++
	return w.closeCalls > w.closeAfter
}

func (w *fakeWindow) PollEvents() {
	w.polls++
}

func (w *fakeWindow) WaitEvents() {
	w.waits++
	if w.onWait != nil {
		w.onWait()
	}
	if len(w.extents) > 1 {
		w.extents = w.extents[1:]
	}
}

type fakeRecord struct {
	cmd   vk.CommandBuffer
	sc    *SwapChain
	index uint32
}

type fakeRenderer struct {
	prepared   []*SwapChain
	records    []fakeRecord
	prepareErr error
	recordErr  error
}

func (r *fakeRenderer) Prepare(sc *SwapChain) error {
	r.prepared = append(r.prepared, sc)
	return r.prepareErr
}

func (r *fakeRenderer) Record(cmd vk.CommandBuffer, sc *SwapChain, imageIndex uint32) error {
	r.records = append(r.records, fakeRecord{cmd: cmd, sc: sc, index: imageIndex})
	return r.recordErr
}
