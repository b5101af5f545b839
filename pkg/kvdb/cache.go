package kvdb

import (
	"sync"

	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"

	lru "github.com/hashicorp/golang-lru/v2"
)

type CityGetter interface {
	GetCity(id int) (datastructure.City, error)
}

// CachedLookup keeps recently resolved cities in memory so nearest queries skip the bolt read.
// entries must be removed when their city is deleted.
type CachedLookup struct {
	store CityGetter
	lru   *lru.Cache[int, datastructure.City]

	mu sync.Mutex
	// removals counts Remove calls. a store read that overlapped one is not cached.
	removals uint64
}

func NewCachedLookup(store CityGetter, size int) (*CachedLookup, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[int, datastructure.City](size)
	if err != nil {
		return nil, err
	}
	return &CachedLookup{store: store, lru: c}, nil
}

// GetCity misses are not cached, so a not found error always comes from the store.
func (cl *CachedLookup) GetCity(id int) (datastructure.City, error) {
	if city, ok := cl.lru.Get(id); ok {
		return city, nil
	}

	cl.mu.Lock()
	seen := cl.removals
	cl.mu.Unlock()

	city, err := cl.store.GetCity(id)
	if err != nil {
		return datastructure.City{}, err
	}

	cl.mu.Lock()
	if cl.removals == seen {
		cl.lru.Add(id, city)
	}
	cl.mu.Unlock()
	return city, nil
}

func (cl *CachedLookup) Remove(id int) {
	cl.mu.Lock()
	cl.removals++
	cl.lru.Remove(id)
	cl.mu.Unlock()
}

func (cl *CachedLookup) Len() int {
	return cl.lru.Len()
}
