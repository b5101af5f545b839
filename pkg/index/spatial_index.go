package index

import (
	"sync"

	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
)

const (
	DefaultMinChildItems = 25
	DefaultMaxChildItems = 50
)

// SpatialIndex is the in-memory nearest-neighbour index over city coordinates.
// It is a rebuildable cache of the city store: readers share the lock, Build/Insert/Delete hold it exclusively.
type SpatialIndex struct {
	mu    sync.RWMutex
	rtree RtreeI
	size  int
}

func NewSpatialIndex(minChildItems, maxChildItems int) *SpatialIndex {
	return &SpatialIndex{
		rtree: datastructure.NewRtree(minChildItems, maxChildItems, 2),
	}
}

// Build bulk-loads a fresh index. if points repeat an id, the last one wins.
func Build(points []datastructure.CityPoint) *SpatialIndex {
	idx := NewSpatialIndex(DefaultMinChildItems, DefaultMaxChildItems)
	idx.Load(points)
	return idx
}

// Load adds a snapshot of points to the index. if points repeat an id, the last one wins.
func (si *SpatialIndex) Load(points []datastructure.CityPoint) {
	last := make(map[int]int, len(points))
	for i, p := range points {
		last[p.ID] = i
	}

	si.mu.Lock()
	defer si.mu.Unlock()
	for i, p := range points {
		if last[p.ID] != i {
			continue
		}
		si.rtree.InsertLeaf(p.GetBound(), p)
		si.size++
	}
}

// Insert adds one point. ids are not deduplicated: inserting an id twice stores two entries.
func (si *SpatialIndex) Insert(id int, lon, lat float64) {
	p := datastructure.NewCityPoint(id, lat, lon)

	si.mu.Lock()
	defer si.mu.Unlock()
	si.rtree.InsertLeaf(p.GetBound(), p)
	si.size++
}

// Delete removes the point with this id at exactly these coordinates. returns false if there is none.
func (si *SpatialIndex) Delete(id int, lon, lat float64) bool {
	si.mu.Lock()
	defer si.mu.Unlock()
	if !si.rtree.Delete(id, lat, lon) {
		return false
	}
	si.size--
	return true
}

// Nearest returns up to k ids ordered by increasing planar distance to (lon, lat). equal distances are ordered by id.
func (si *SpatialIndex) Nearest(lon, lat float64, k int) []int {
	si.mu.RLock()
	nearest := si.rtree.NearestNeighboursPQ(k, datastructure.NewPoint(lat, lon))
	si.mu.RUnlock()

	ids := make([]int, 0, len(nearest))
	for _, p := range nearest {
		ids = append(ids, p.ID)
	}
	return ids
}

func (si *SpatialIndex) Len() int {
	si.mu.RLock()
	defer si.mu.RUnlock()
	return si.size
}
