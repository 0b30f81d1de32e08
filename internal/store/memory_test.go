package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBackendRecordAndRecentFrames(t *testing.T) {
	b := NewMemory()
	require.NoError(t, b.Init())
	defer b.Close()

	for _, n := range []int{1, 2, 3} {
		require.NoError(t, b.RecordFrame(&FrameRecord{FrameNumber: n}))
	}

	recs, err := b.RecentFrames(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 3, recs[0].FrameNumber)
	assert.Equal(t, 2, recs[1].FrameNumber)
}

func TestMemoryBackendRecentFramesLimitAboveCountReturnsAll(t *testing.T) {
	b := NewMemory()
	require.NoError(t, b.RecordFrame(&FrameRecord{FrameNumber: 1}))

	recs, err := b.RecentFrames(50)
	require.NoError(t, err)
	require.Len(t, recs, 1)
}

func TestMemoryBackendEmptyLedgerReturnsEmptySlice(t *testing.T) {
	b := NewMemory()
	recs, err := b.RecentFrames(10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
