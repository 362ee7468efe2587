package vkframe

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// MaxFramesInFlight bounds how many frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

// SyncSet is the synchronization state of one in-flight frame slot.
type SyncSet struct {
	// ImageAvailable is signaled by acquire and waited on by submit.
	ImageAvailable vk.Semaphore
	// RenderFinished is signaled by submit and waited on by present.
	RenderFinished vk.Semaphore
	// InFlight is signaled when the slot's submission completes on the GPU.
	InFlight vk.Fence
}

// newSyncSets creates count sets. Fences start signaled so the first wait on
// each slot returns immediately. On failure the sets built so far are
// returned alongside the error so the caller can release them.
func newSyncSets(cmds Commands, count int) ([]SyncSet, error) {
	sets := make([]SyncSet, count)
	for i := range sets {
		var err error
		if sets[i].ImageAvailable, err = cmds.CreateSemaphore(); err != nil {
			return sets, errors.Wrapf(err, "create image available semaphore %d", i)
		}
		if sets[i].RenderFinished, err = cmds.CreateSemaphore(); err != nil {
			return sets, errors.Wrapf(err, "create render finished semaphore %d", i)
		}
		if sets[i].InFlight, err = cmds.CreateFence(true); err != nil {
			return sets, errors.Wrapf(err, "create in flight fence %d", i)
		}
	}
	return sets, nil
}

func (s *SyncSet) destroy(cmds Commands) {
	if s.ImageAvailable != vk.NullSemaphore {
		cmds.DestroySemaphore(s.ImageAvailable)
		s.ImageAvailable = vk.NullSemaphore
	}
	if s.RenderFinished != vk.NullSemaphore {
		cmds.DestroySemaphore(s.RenderFinished)
		s.RenderFinished = vk.NullSemaphore
	}
	if s.InFlight != vk.NullFence {
		cmds.DestroyFence(s.InFlight)
		s.InFlight = vk.NullFence
	}
}
