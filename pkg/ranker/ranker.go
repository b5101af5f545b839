package ranker

import (
	"fmt"
	"sort"

	"github.com/lintang-b-s/nearest-cities/pkg"
	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
)

const (
	// DefaultPoolSize is how many candidates are taken from the spatial index before re-ranking.
	DefaultPoolSize = 3
	// MaxResults is the number of neighbours returned.
	MaxResults = 2
)

type NearestIndex interface {
	Nearest(lon, lat float64, k int) []int
}

type CityLookup interface {
	// GetCity returns an error coded pkg.ErrNotFound when the id is unknown.
	GetCity(id int) (datastructure.City, error)
}

// RankNearest returns at most two cities closest to (queryLat, queryLon) by great-circle distance,
// picked among the poolSize nearest index candidates. cities located exactly at the query point are skipped
// and ids missing from the store are dropped.
func RankNearest(queryLat, queryLon float64, idx NearestIndex, store CityLookup, poolSize int) ([]datastructure.RankedNeighbor, error) {
	ranked, _, err := rankNearest(queryLat, queryLon, idx, store, poolSize)
	return ranked, err
}

// RankNearestWithDrops is RankNearest that also reports how many candidates could not be resolved in the store.
func RankNearestWithDrops(queryLat, queryLon float64, idx NearestIndex, store CityLookup, poolSize int) ([]datastructure.RankedNeighbor, int, error) {
	return rankNearest(queryLat, queryLon, idx, store, poolSize)
}

func rankNearest(queryLat, queryLon float64, idx NearestIndex, store CityLookup, poolSize int) ([]datastructure.RankedNeighbor, int, error) {
	candidateIDs := idx.Nearest(queryLon, queryLat, poolSize)

	dropped := 0
	candidates := make([]datastructure.RankedNeighbor, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		city, err := store.GetCity(id)
		if pkg.HasCode(err, pkg.ErrNotFound) {
			// deleted between the index query and the lookup
			dropped++
			continue
		}
		if err != nil {
			return nil, dropped, fmt.Errorf("resolve candidate %d: %w", id, err)
		}

		if city.Lat == queryLat && city.Lon == queryLon {
			continue
		}

		candidate := datastructure.NewRankedNeighbor(city)
		candidate.DistanceKM = datastructure.GreatCircleDistance(queryLat, queryLon, city.Lat, city.Lon)
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DistanceKM != candidates[j].DistanceKM {
			return candidates[i].DistanceKM < candidates[j].DistanceKM
		}
		return candidates[i].ID < candidates[j].ID
	})

	if len(candidates) > MaxResults {
		candidates = candidates[:MaxResults]
	}

	return candidates, dropped, nil
}
