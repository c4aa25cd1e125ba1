package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Local is an in-process cache on ristretto. Clearing a namespace bumps its
// generation so older keys become unreachable and age out through the TTL.
// A miss remembers the generation it saw; a Set filling that miss is dropped
// when a Clear ran in between, since the value was loaded before it.
type Local struct {
	cache *ristretto.Cache[string, []byte]
	ttl   time.Duration

	mu          sync.RWMutex
	generations map[string]uint64
	misses      map[string]uint64
}

func NewLocal(ttl time.Duration) (*Local, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []byte]{
		NumCounters: 1e5,
		MaxCost:     64 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Local{cache: c, ttl: ttlOrDefault(ttl), generations: map[string]uint64{}, misses: map[string]uint64{}}, nil
}

func entryKey(namespace string, gen uint64, key string) string {
	return namespace + ":" + strconv.FormatUint(gen, 10) + ":" + key
}

func (l *Local) Get(_ context.Context, namespace, key string, dest any) (bool, error) {
	l.mu.RLock()
	gen := l.generations[namespace]
	l.mu.RUnlock()
	raw, ok := l.cache.Get(entryKey(namespace, gen, key))
	if !ok {
		l.mu.Lock()
		l.misses[namespace+":"+key] = gen
		l.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Local) Set(_ context.Context, namespace, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	l.mu.Lock()
	gen := l.generations[namespace]
	missed, pending := l.misses[namespace+":"+key]
	delete(l.misses, namespace+":"+key)
	l.mu.Unlock()
	if pending && missed != gen {
		return nil
	}
	l.cache.SetWithTTL(entryKey(namespace, gen, key), raw, int64(len(raw)), l.ttl)
	l.cache.Wait()
	return nil
}

func (l *Local) Clear(_ context.Context, namespace string) error {
	l.mu.Lock()
	l.generations[namespace]++
	l.mu.Unlock()
	return nil
}

func (l *Local) Close() {
	l.cache.Close()
}
