// ABOUTME: Tests for the in-memory key-value store
// ABOUTME: Covers get/put/delete semantics, isolation of returned slices, and concurrency

package kv

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetMissingKey(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PutGetRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("value")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)
}

func TestMemoryStore_PutOverwrites(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("one")))
	require.NoError(t, s.Put(ctx, "k", []byte("two")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("value")))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReturnedSliceIsACopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("abc")))

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	got[0] = 'X'

	again, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%5)
			_ = s.Put(ctx, key, []byte(fmt.Sprintf("value-%d", n)))
			_, _ = s.Get(ctx, key)
			if n%3 == 0 {
				_ = s.Delete(ctx, key)
			}
		}(i)
	}
	wg.Wait()
}
