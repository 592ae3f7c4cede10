// Package cache holds the pipeline's lazily-loaded, effectively-immutable
// lookup tables: asset-type-by-uri, relation-type-by-uri, and
// beheerder-by-reference (spec §4.5 concurrency invariants: "Lookups are
// loaded lazily on first asset-batch per worker... subsequent workers must
// each observe a fully populated lookup before proceeding").
package cache

import (
	"context"
	"sync"

	"github.com/vlaanderen-mow/amsync/common"
)

// Loader populates a lookup's full key/value set in one shot.
type Loader func(ctx context.Context) (map[string]string, error)

// Lookup is a once-loaded string-to-string map safe for concurrent reads
// once loaded. The first caller to reach Get triggers Loader; concurrent
// callers block until that load completes, satisfying the "fully populated
// before proceeding" invariant without each caller reloading independently.
type Lookup struct {
	once   sync.Once
	loader Loader
	mu     sync.RWMutex
	data   map[string]string
	err    error
}

// NewLookup returns a Lookup that populates itself via loader on first use.
func NewLookup(loader Loader) *Lookup {
	return &Lookup{loader: loader}
}

func (l *Lookup) ensureLoaded(ctx context.Context) error {
	l.once.Do(func() {
		data, err := l.loader(ctx)
		l.mu.Lock()
		l.data = data
		l.err = err
		l.mu.Unlock()
	})
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Get returns the value for key, loading the whole table on first call.
func (l *Lookup) Get(ctx context.Context, key string) (string, bool, error) {
	if err := l.ensureLoaded(ctx); err != nil {
		return "", false, common.Wrap(common.ClassConnectivity, "load lookup table", err)
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.data[key]
	return v, ok, nil
}
