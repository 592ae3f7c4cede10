package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_LoadsOnce(t *testing.T) {
	var calls int32
	lookup := NewLookup(func(ctx context.Context) (map[string]string, error) {
		atomic.AddInt32(&calls, 1)
		return map[string]string{"uri-a": "key-a"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, ok, err := lookup.Get(context.Background(), "uri-a")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "key-a", v)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLookup_MissingKey(t *testing.T) {
	lookup := NewLookup(func(ctx context.Context) (map[string]string, error) {
		return map[string]string{}, nil
	})
	_, ok, err := lookup.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}
