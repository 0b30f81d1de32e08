package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDisabledProviderReturnsNoopMeter(t *testing.T) {
	p, err := New(Config{Enabled: false, ServiceName: "morviq"})
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	require.NotNil(t, p.Meter("test"))
}

func TestEnabledProviderReturnsGlobalMeter(t *testing.T) {
	p, err := New(Config{Enabled: true, ServiceName: "morviq"})
	require.NoError(t, err)
	assert.True(t, p.Enabled())
	require.NotNil(t, p.Meter("test"))
}

func TestFlushAndShutdownAreNoops(t *testing.T) {
	p, err := New(Config{Enabled: true})
	require.NoError(t, err)
	assert.NoError(t, p.Flush(context.Background()))
	assert.NoError(t, p.Shutdown(context.Background()))
}
