package monitor

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFrameUpdatesFPSAndCounts(t *testing.T) {
	s := NewService(Dependencies{})
	s.RecordFrame(1, 100*time.Millisecond)
	status := s.GetStatus()
	assert.Equal(t, 1, status.LastFrame)
	assert.Equal(t, 1, status.TotalFrames)
	assert.InDelta(t, 10.0, status.FPS, 0.01)
}

func TestRecordDropIncrementsCounter(t *testing.T) {
	s := NewService(Dependencies{})
	s.RecordDrop()
	s.RecordDrop()
	assert.Equal(t, 2, s.GetStatus().DroppedFrames)
}

func TestRecordErrorSetsAndClears(t *testing.T) {
	s := NewService(Dependencies{})
	s.RecordError(errors.New("boom"))
	assert.Equal(t, "boom", s.GetStatus().LastError)
	s.RecordError(nil)
	assert.Empty(t, s.GetStatus().LastError)
}

func TestStartWithoutStatusFileIsNoop(t *testing.T) {
	s := NewService(Dependencies{})
	require.NoError(t, s.Start())
	assert.False(t, s.IsRunning())
}

func TestStartWritesStatusFilePeriodically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status.json")
	s := NewService(Dependencies{StatusFilePath: path, WriteInterval: 10 * time.Millisecond})
	s.RecordFrame(7, 50*time.Millisecond)

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())

	require.Eventually(t, func() bool {
		_, err := os.Stat(path)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.IsRunning())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var status Status
	require.NoError(t, json.Unmarshal(data, &status))
	assert.Equal(t, 7, status.LastFrame)
}
