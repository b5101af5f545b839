package controllers

import (
	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
	"github.com/lintang-b-s/nearest-cities/pkg/http/usecases"
)

type CityService interface {
	AddCity(name string, lat, lon float64) (datastructure.City, error)
	ListCities(skip, limit int) ([]datastructure.City, error)
	GetCity(name string) (datastructure.City, error)
	DeleteCity(name string) (datastructure.City, error)
	NearestCities(query usecases.NearestQuery) ([]datastructure.RankedNeighbor, error)
	RequestHistory(limit int) ([]datastructure.RequestLog, error)
}
