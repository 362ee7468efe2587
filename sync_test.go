package vkframe

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func TestNewSyncSets(t *testing.T) {
	cmds := newFakeCommands()
	sets, err := newSyncSets(cmds, MaxFramesInFlight)
	require.NoError(t, err)
	require.Len(t, sets, MaxFramesInFlight)
	// Fences must start signaled or the first acquire would block forever.
	require.Empty(t, cmds.problems)

	for i := range sets {
		require.True(t, sets[i].ImageAvailable != vk.NullSemaphore)
		require.True(t, sets[i].RenderFinished != vk.NullSemaphore)
		require.True(t, sets[i].InFlight != vk.NullFence)
		sets[i].destroy(cmds)
		sets[i].destroy(cmds)
	}
	requireClean(t, cmds)
}

func TestNewSyncSetsFailure(t *testing.T) {
	cmds := newFakeCommands()
	cmds.fail["semaphore"] = 4
	sets, err := newSyncSets(cmds, MaxFramesInFlight)
	require.Error(t, err)
	require.Equal(t, errInjected, errors.Cause(err))
	require.Len(t, sets, MaxFramesInFlight)
	require.True(t, sets[1].RenderFinished == vk.NullSemaphore)
	require.True(t, sets[1].InFlight == vk.NullFence)

	for i := range sets {
		sets[i].destroy(cmds)
	}
	requireClean(t, cmds)
}
