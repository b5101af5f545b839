package usecases

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/lintang-b-s/nearest-cities/pkg"
	"github.com/lintang-b-s/nearest-cities/pkg/concurrent"
	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
	"github.com/lintang-b-s/nearest-cities/pkg/metrics"
	"github.com/lintang-b-s/nearest-cities/pkg/ranker"

	"go.uber.org/zap"
)

const (
	DefaultListLimit    = 20
	DefaultHistoryLimit = 50
)

// CityService keeps the city store and the spatial index in step.
// the store is written first, the index follows only after the store committed.
// mu serializes mutations so a delete never runs between a save and its index insert.
type CityService struct {
	mu      sync.Mutex
	log     *zap.Logger
	store   CityStore
	index   SpatialIndex
	lookup  CityLookup
	metrics *metrics.CityMetrics
	audit   *concurrent.BackgroundWorker[datastructure.RequestLog]
	now     func() time.Time
}

func New(log *zap.Logger, store CityStore, index SpatialIndex, lookup CityLookup, cityMetrics *metrics.CityMetrics,
	auditWorkers, auditBuffer int) *CityService {
	s := &CityService{
		log:     log,
		store:   store,
		index:   index,
		lookup:  lookup,
		metrics: cityMetrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
	s.audit = concurrent.NewBackgroundWorker(auditWorkers, auditBuffer, s.writeAudit)
	s.audit.Start()
	s.metrics.IndexSize.Set(float64(index.Len()))
	return s
}

func (s *CityService) AddCity(name string, lat, lon float64) (datastructure.City, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return datastructure.City{}, err
	}

	s.mu.Lock()
	city, err := s.store.SaveCity(name, lat, lon)
	if err != nil {
		s.mu.Unlock()
		return datastructure.City{}, err
	}
	s.index.Insert(city.ID, city.Lon, city.Lat)
	size := s.index.Len()
	s.mu.Unlock()

	s.metrics.ObserveMutation(metrics.OpInsert, size)
	s.log.Info("city added", zap.Int("id", city.ID), zap.String("name", city.Name))

	s.logRequest(datastructure.RequestLog{
		Type:   datastructure.RequestAdd,
		CityID: city.ID,
		Name:   city.Name,
		Lat:    city.Lat,
		Lon:    city.Lon,
	})
	return city, nil
}

func (s *CityService) ListCities(skip, limit int) ([]datastructure.City, error) {
	if skip < 0 {
		return nil, pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "skip must not be negative")
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.store.ListCities(skip, limit)
}

func (s *CityService) GetCity(name string) (datastructure.City, error) {
	return s.store.GetCityByName(name)
}

func (s *CityService) DeleteCity(name string) (datastructure.City, error) {
	s.mu.Lock()
	city, err := s.deleteLocked(name)
	if err != nil {
		s.mu.Unlock()
		return datastructure.City{}, err
	}
	size := s.index.Len()
	s.mu.Unlock()

	s.metrics.ObserveMutation(metrics.OpDelete, size)
	s.log.Info("city deleted", zap.Int("id", city.ID), zap.String("name", city.Name))

	s.logRequest(datastructure.RequestLog{
		Type:   datastructure.RequestDelete,
		CityID: city.ID,
		Name:   city.Name,
		Lat:    city.Lat,
		Lon:    city.Lon,
	})
	return city, nil
}

func (s *CityService) deleteLocked(name string) (datastructure.City, error) {
	city, err := s.store.GetCityByName(name)
	if err != nil {
		return datastructure.City{}, err
	}

	city, err = s.store.DeleteCity(city.ID)
	if err != nil {
		return datastructure.City{}, err
	}

	if !s.index.Delete(city.ID, city.Lon, city.Lat) {
		s.log.Warn("deleted city was not in the spatial index", zap.Int("id", city.ID))
	}
	s.lookup.Remove(city.ID)
	return city, nil
}

// NearestCities returns up to two cities nearest to the named city or to the given coordinates.
// a name takes precedence over coordinates.
func (s *CityService) NearestCities(query NearestQuery) ([]datastructure.RankedNeighbor, error) {
	var (
		lat, lon float64
		name     string
	)
	switch {
	case query.CityName != nil && strings.TrimSpace(*query.CityName) != "":
		city, err := s.store.GetCityByName(*query.CityName)
		if err != nil {
			return nil, err
		}
		lat, lon, name = city.Lat, city.Lon, city.Name
	case query.Lat != nil && query.Lon != nil:
		lat, lon = *query.Lat, *query.Lon
		if err := validateCoordinates(lat, lon); err != nil {
			return nil, err
		}
	default:
		return nil, pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "either city name or both latitude and longitude must be provided")
	}

	start := time.Now()
	neighbors, dropped, err := ranker.RankNearestWithDrops(lat, lon, s.index, s.lookup, ranker.DefaultPoolSize)
	if err != nil {
		return nil, pkg.WrapErrorf(err, pkg.ErrInternalServerError, "nearest cities query failed")
	}
	s.metrics.ObserveNearest(time.Since(start).Seconds(), dropped)
	if dropped > 0 {
		s.log.Debug("nearest candidates missing from store", zap.Int("dropped", dropped))
	}

	s.logRequest(datastructure.RequestLog{
		Type: datastructure.RequestNearest,
		Name: name,
		Lat:  lat,
		Lon:  lon,
	})
	return neighbors, nil
}

// RequestHistory returns the audit log, most recent first.
func (s *CityService) RequestHistory(limit int) ([]datastructure.RequestLog, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.ListRequests(limit)
}

// Close waits for queued audit entries to be written.
func (s *CityService) Close() {
	s.audit.Close()
}

func (s *CityService) logRequest(entry datastructure.RequestLog) {
	entry.RequestTime = s.now()
	if err := s.audit.TriggerProcessing(entry); err != nil {
		s.log.Warn("request not audited", zap.String("type", string(entry.Type)), zap.Error(err))
	}
}

func (s *CityService) writeAudit(entry datastructure.RequestLog) {
	if err := s.store.LogRequest(entry); err != nil {
		s.log.Error("failed to write request log", zap.String("type", string(entry.Type)), zap.Error(err))
	}
}

func validateCoordinates(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "coordinates out of range: lat %v, lon %v", lat, lon)
	}
	return nil
}
