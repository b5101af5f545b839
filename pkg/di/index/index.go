package index_di

import (
	"github.com/lintang-b-s/nearest-cities/pkg/index"
	"github.com/lintang-b-s/nearest-cities/pkg/kvdb"

	"go.uber.org/zap"
)

// New rebuilds the spatial index from every city in the store.
func New(store *kvdb.CityStore, log *zap.Logger) (*index.SpatialIndex, error) {
	points, err := store.Points()
	if err != nil {
		return nil, err
	}

	idx := index.Build(points)
	log.Info("spatial index built", zap.Int("cities", idx.Len()))
	return idx, nil
}
