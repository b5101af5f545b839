package service_di

import (
	"github.com/lintang-b-s/nearest-cities/pkg/di/config"
	"github.com/lintang-b-s/nearest-cities/pkg/http/usecases"
	"github.com/lintang-b-s/nearest-cities/pkg/index"
	"github.com/lintang-b-s/nearest-cities/pkg/kvdb"
	"github.com/lintang-b-s/nearest-cities/pkg/metrics"

	"go.uber.org/zap"
)

// New starts the city service. the cleanup drains pending audit writes, so it must run before the store closes.
func New(cfg *config.Config, log *zap.Logger, store *kvdb.CityStore, idx *index.SpatialIndex,
	lookup *kvdb.CachedLookup, cityMetrics *metrics.CityMetrics) (*usecases.CityService, func(), error) {
	service := usecases.New(log, store, idx, lookup, cityMetrics, cfg.AuditWorkers, cfg.AuditBuffer)

	cleanup := func() {
		service.Close()
	}

	return service, cleanup, nil
}
