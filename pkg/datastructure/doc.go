package datastructure

import "time"

// City model info
// @Description	city stored in the city store. latitude & longitude in degrees.
type City struct {
	ID   int     `json:"id" msgpack:"id"`
	Name string  `json:"name" msgpack:"name"`
	Lat  float64 `json:"latitude" msgpack:"lat"`
	Lon  float64 `json:"longitude" msgpack:"lon"`
}

func NewCity(id int, name string, lat, lon float64) City {
	return City{
		ID:   id,
		Name: name,
		Lat:  lat,
		Lon:  lon,
	}
}

// Point returns the entry the spatial index keeps for this city.
func (c City) Point() CityPoint {
	return NewCityPoint(c.ID, c.Lat, c.Lon)
}

// CityPoint is what the spatial index holds for a city: its id and coordinates, nothing else.
type CityPoint struct {
	ID  int
	Lat float64
	Lon float64
}

func NewCityPoint(id int, lat, lon float64) CityPoint {
	return CityPoint{
		ID:  id,
		Lat: lat,
		Lon: lon,
	}
}

func (o CityPoint) GetBound() RtreeBoundingBox {
	return NewPointBound(o.Lat, o.Lon)
}

// RankedNeighbor model info
// @Description	one of the nearest cities to the query point.
type RankedNeighbor struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Lat        float64 `json:"latitude"`
	Lon        float64 `json:"longitude"`
	DistanceKM float64 `json:"distance_km"` // great-circle distance from the query point
}

func NewRankedNeighbor(c City) RankedNeighbor {
	return RankedNeighbor{
		ID:   c.ID,
		Name: c.Name,
		Lat:  c.Lat,
		Lon:  c.Lon,
	}
}

type RequestType string

const (
	RequestAdd     RequestType = "ADD"
	RequestDelete  RequestType = "DELETE"
	RequestNearest RequestType = "NEAREST"
)

// RequestLog model info
// @Description	audit entry for a city add/delete or a nearest-cities query.
type RequestLog struct {
	ID          uint64      `json:"id" msgpack:"id"`
	Type        RequestType `json:"request_type" msgpack:"type"`
	CityID      int         `json:"city_id,omitempty" msgpack:"city_id"`
	Name        string      `json:"name,omitempty" msgpack:"name"`
	Lat         float64     `json:"latitude" msgpack:"lat"`
	Lon         float64     `json:"longitude" msgpack:"lon"`
	RequestTime time.Time   `json:"request_time" msgpack:"request_time"`
}
