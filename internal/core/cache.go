package core

import (
	"context"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// keyedLocks serializes work per model id while letting different ids proceed
// concurrently. Entries are dropped once nobody waits on them.
type keyedLocks struct {
	edit    sync.Mutex
	waiters map[ModelID]int
	locks   map[ModelID]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{
		waiters: make(map[ModelID]int),
		locks:   make(map[ModelID]*sync.Mutex),
	}
}

func (k *keyedLocks) lock(id ModelID) {
	k.edit.Lock()
	mu, ok := k.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		k.locks[id] = mu
	}
	k.waiters[id]++
	k.edit.Unlock()

	mu.Lock()
}

func (k *keyedLocks) unlock(id ModelID) {
	k.edit.Lock()
	defer k.edit.Unlock()

	mu, ok := k.locks[id]
	if !ok {
		return
	}
	mu.Unlock()

	k.waiters[id]--
	if k.waiters[id] == 0 {
		delete(k.locks, id)
		delete(k.waiters, id)
	}
}

// PredictorCache hands out predictors for model descriptors. With size 0 every
// call loads the artifact from disk and the predictor is released after use.
type PredictorCache struct {
	loader *Loader
	cache  *lru.Cache[ModelID, Predictor]
	locks  *keyedLocks
}

// NewPredictorCache creates a cache holding up to size predictors. The size is
// raised to minSize so that a predictor in use is never evicted.
func NewPredictorCache(loader *Loader, size, minSize int) (*PredictorCache, error) {
	pc := &PredictorCache{loader: loader, locks: newKeyedLocks()}
	if size <= 0 {
		return pc, nil
	}

	size = max(size, minSize)
	cache, err := lru.NewWithEvict(size, func(id ModelID, p Predictor) {
		slog.Info("releasing cached model", "model_id", id)
		p.Release()
	})
	if err != nil {
		return nil, err
	}
	pc.cache = cache
	return pc, nil
}

func (pc *PredictorCache) Enabled() bool {
	return pc.cache != nil
}

// Get returns a predictor for desc and a function that must be called once the
// caller is done with it.
func (pc *PredictorCache) Get(ctx context.Context, desc ModelDescriptor) (Predictor, func(), error) {
	if pc.cache == nil {
		p, err := pc.loader.Load(ctx, desc)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Release, nil
	}

	if p, ok := pc.cache.Get(desc.ID); ok {
		return p, func() {}, nil
	}

	pc.locks.lock(desc.ID)
	defer pc.locks.unlock(desc.ID)

	// Another caller may have filled the entry while we waited.
	if p, ok := pc.cache.Get(desc.ID); ok {
		return p, func() {}, nil
	}

	p, err := pc.loader.Load(ctx, desc)
	if err != nil {
		return nil, nil, err
	}
	pc.cache.Add(desc.ID, p)
	slog.Info("cached model", "model_id", desc.ID)

	return p, func() {}, nil
}

// Close releases every cached predictor.
func (pc *PredictorCache) Close() {
	if pc.cache != nil {
		pc.cache.Purge()
	}
}
