package kv_di

import (
	"time"

	"github.com/lintang-b-s/nearest-cities/pkg/di/config"
	"github.com/lintang-b-s/nearest-cities/pkg/kvdb"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

func New(cfg *config.Config, log *zap.Logger) (*kvdb.CityStore, func(), error) {
	db, err := bolt.Open(cfg.DBPath, 0600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, nil, err
	}

	store, err := kvdb.NewCityStore(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close city store", zap.Error(err))
		}
	}

	return store, cleanup, nil
}

func NewLookup(cfg *config.Config, store *kvdb.CityStore) (*kvdb.CachedLookup, error) {
	return kvdb.NewCachedLookup(store, cfg.LookupCacheSize)
}
