package timeline

import (
	"testing"
	"time"

	"github.com/fprochazka/hydraping/pkg/endpoint"
	"github.com/fprochazka/hydraping/pkg/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_AppendInOrder(t *testing.T) {
	r := NewRing(3)
	now := time.Now()
	require.True(t, r.Append(NewBucket(0, now)))
	require.True(t, r.Append(NewBucket(1, now)))
	require.True(t, r.Append(NewBucket(2, now)))

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, int64(0), snap[0].Index)
	assert.Equal(t, int64(2), snap[2].Index)
}

func TestRing_RejectsOutOfOrder(t *testing.T) {
	r := NewRing(3)
	now := time.Now()
	require.True(t, r.Append(NewBucket(0, now)))
	assert.False(t, r.Append(NewBucket(2, now))) // skipped index 1
	assert.False(t, r.Append(NewBucket(0, now))) // stale repeat
}

func TestRing_OverwritesOldestWhenFull(t *testing.T) {
	r := NewRing(2)
	now := time.Now()
	require.True(t, r.Append(NewBucket(0, now)))
	require.True(t, r.Append(NewBucket(1, now)))
	require.True(t, r.Append(NewBucket(2, now)))

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(1), snap[0].Index)
	assert.Equal(t, int64(2), snap[1].Index)
}

func TestRing_LatestNonEmpty(t *testing.T) {
	r := NewRing(3)
	now := time.Now()
	require.True(t, r.Append(NewBucket(0, now)))
	require.True(t, r.Append(NewBucket(1, now))) // empty
	_, ok := r.LatestNonEmpty()
	assert.False(t, ok) // both buckets are empty so far

	full := NewBucket(2, now)
	full.Results[endpoint.CheckIcmp] = probe.Result{CheckKind: endpoint.CheckIcmp, Status: probe.StatusOk}
	require.True(t, r.Append(full))

	latest, ok := r.LatestNonEmpty()
	require.True(t, ok)
	assert.Equal(t, int64(2), latest.Index)
}

func TestRing_Resize_PreservesNewest(t *testing.T) {
	r := NewRing(3)
	now := time.Now()
	require.True(t, r.Append(NewBucket(0, now)))
	require.True(t, r.Append(NewBucket(1, now)))
	require.True(t, r.Append(NewBucket(2, now)))

	r.Resize(2)
	assert.Equal(t, 2, r.Cap())
	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(1), snap[0].Index)
	assert.Equal(t, int64(2), snap[1].Index)

	// Future appends must continue from the next expected index.
	require.True(t, r.Append(NewBucket(3, now)))
	snap = r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, int64(2), snap[0].Index)
	assert.Equal(t, int64(3), snap[1].Index)
}

func TestRing_Resize_Grow(t *testing.T) {
	r := NewRing(2)
	now := time.Now()
	require.True(t, r.Append(NewBucket(0, now)))
	require.True(t, r.Append(NewBucket(1, now)))

	r.Resize(4)
	assert.Equal(t, 4, r.Cap())
	snap := r.Snapshot()
	require.Len(t, snap, 2)

	require.True(t, r.Append(NewBucket(2, now)))
	require.True(t, r.Append(NewBucket(3, now)))
	snap = r.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, int64(0), snap[0].Index)
	assert.Equal(t, int64(3), snap[3].Index)
}
