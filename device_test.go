package vkframe

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueFamilyIndices(t *testing.T) {
	var q QueueFamilyIndices
	require.False(t, q.IsComplete())

	q = QueueFamilyIndices{GraphicsFamily: 1, PresentFamily: 1, HasGraphicsFamily: true, HasPresentFamily: true}
	require.True(t, q.IsComplete())
	require.False(t, q.Separate())
	require.Len(t, queueCreateInfos(q), 1)

	q.PresentFamily = 2
	require.True(t, q.Separate())
	infos := queueCreateInfos(q)
	require.Len(t, infos, 2)
	require.Equal(t, uint32(1), infos[0].QueueFamilyIndex)
	require.Equal(t, uint32(2), infos[1].QueueFamilyIndex)
}
