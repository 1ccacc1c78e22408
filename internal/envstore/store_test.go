package envstore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_BasicOperations(t *testing.T) {
	s := New()

	_, ok := s.Get("token")
	assert.False(t, ok)
	assert.False(t, s.Contains("token"))

	s.Set("token", "abc")
	v, ok := s.Get("token")
	require.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.True(t, s.Contains("token"))

	s.Set("token", "xyz")
	v, _ = s.Get("token")
	assert.Equal(t, "xyz", v)

	s.Remove("token")
	assert.False(t, s.Contains("token"))

	// Removing an absent key must not panic.
	s.Remove("token")
}

func TestStore_SeededAndSnapshotDetached(t *testing.T) {
	s := New(map[string]string{"a": "1"}, map[string]string{"a": "2", "b": "3"})

	snap := s.Snapshot()
	assert.Equal(t, map[string]string{"a": "2", "b": "3"}, snap)

	snap["a"] = "mutated"
	v, _ := s.Get("a")
	assert.Equal(t, "2", v, "snapshot mutation must not leak into store")

	s.Set("c", "4")
	assert.NotContains(t, snap, "c")
}

func TestStore_Clear(t *testing.T) {
	s := New(map[string]string{"a": "1", "b": "2"})
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Contains("a"))
}

func TestStore_ConcurrentWritersDoNotLoseKeys(t *testing.T) {
	const workers = 16
	const writes = 200

	s := New()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				key := fmt.Sprintf("w%d-k%d", w, i)
				s.Set(key, fmt.Sprintf("%d", i))
			}
		}(w)
	}
	wg.Wait()

	require.Equal(t, workers*writes, s.Len())
	for w := 0; w < workers; w++ {
		v, ok := s.Get(fmt.Sprintf("w%d-k%d", w, writes-1))
		require.True(t, ok)
		assert.Equal(t, fmt.Sprintf("%d", writes-1), v)
	}
}

func TestStore_LastWriteWinsPerWorkerOrder(t *testing.T) {
	// Concurrent writers hammer one key; once they finish, the value must be
	// one of the written values, never a torn or empty read.
	const workers = 8
	const writes = 100

	s := New()
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				s.Set("shared", fmt.Sprintf("w%d-%d", w, i))
			}
		}(w)
	}
	wg.Wait()

	v, ok := s.Get("shared")
	require.True(t, ok)
	assert.Regexp(t, `^w\d+-\d+$`, v)
}
