package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSharedTier_GetMissWhenUnreachable(t *testing.T) {
	tier := NewSharedTier("127.0.0.1:1", "", "amsync", time.Hour)
	defer tier.Close()

	_, found, err := tier.Get(context.Background(), "assettypes:some-uri")
	assert.Error(t, err)
	assert.False(t, found)
}

func TestSharedTier_SetAllFailsWhenUnreachable(t *testing.T) {
	tier := NewSharedTier("127.0.0.1:1", "", "amsync", time.Hour)
	defer tier.Close()

	err := tier.SetAll(context.Background(), map[string]string{"a": "b"})
	assert.Error(t, err)
}

func TestSharedTier_Close(t *testing.T) {
	tier := NewSharedTier("127.0.0.1:1", "", "amsync", time.Hour)
	assert.NoError(t, tier.Close())
}
