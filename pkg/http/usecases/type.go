package usecases

import (
	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
)

type CityStore interface {
	SaveCity(name string, lat, lon float64) (datastructure.City, error)
	GetCityByName(name string) (datastructure.City, error)
	DeleteCity(id int) (datastructure.City, error)
	ListCities(skip, limit int) ([]datastructure.City, error)
	LogRequest(entry datastructure.RequestLog) error
	ListRequests(limit int) ([]datastructure.RequestLog, error)
}

type SpatialIndex interface {
	Insert(id int, lon, lat float64)
	Delete(id int, lon, lat float64) bool
	Nearest(lon, lat float64, k int) []int
	Len() int
}

// CityLookup resolves index candidates, usually through a cache that must forget deleted cities.
type CityLookup interface {
	GetCity(id int) (datastructure.City, error)
	Remove(id int)
}

// NearestQuery is either a stored city name or a coordinate pair.
type NearestQuery struct {
	CityName *string
	Lat      *float64
	Lon      *float64
}
