// Copyright 2025 James Ross
package equipment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryAcquireWithinCapacity(t *testing.T) {
	p := NewPool(3)
	require.True(t, p.TryAcquire(0, 2, 2))
	require.Equal(t, 1, p.AvailableAt(0))
	require.Equal(t, 2, p.PeakConcurrent())
}

func TestTryAcquireDeniedOverCapacity(t *testing.T) {
	p := NewPool(2)
	require.True(t, p.TryAcquire(0, 5, 2))
	require.False(t, p.TryAcquire(0, 1, 1))
	require.Equal(t, 1, p.Denials())
}

func TestReleasedAtBoundaryAvailable(t *testing.T) {
	p := NewPool(1)
	require.True(t, p.TryAcquire(0, 2, 1))
	require.Equal(t, 0, p.AvailableAt(1.9))
	require.Equal(t, 1, p.AvailableAt(2))
}

func TestRollbackViaRelease(t *testing.T) {
	p := NewPool(1)
	require.True(t, p.TryAcquire(0, 5, 1))
	require.Equal(t, 0, p.AvailableAt(0))
	p.Release(5, 1)
	require.Equal(t, 1, p.AvailableAt(0))
}

func TestUtilizationAndEfficiency(t *testing.T) {
	p := NewPool(4)
	require.True(t, p.TryAcquire(0, 10, 2))
	require.Equal(t, 0.5, p.Utilization())
	require.InDelta(t, 20.0/(4*10), p.Efficiency(10), 1e-9)
}

func TestInvariantAvailablePlusHeldEqualsTotal(t *testing.T) {
	p := NewPool(5)
	p.TryAcquire(0, 3, 2)
	p.TryAcquire(0, 7, 1)
	held := p.total - p.AvailableAt(0)
	require.Equal(t, 3, held)
	require.Equal(t, p.total, p.AvailableAt(0)+held)
}
