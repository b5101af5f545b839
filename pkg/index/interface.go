package index

import "github.com/lintang-b-s/nearest-cities/pkg/datastructure"

type RtreeI interface {
	InsertLeaf(bound datastructure.RtreeBoundingBox, leaf datastructure.CityPoint)
	Delete(id int, lat, lon float64) bool
	NearestNeighboursPQ(k int, p datastructure.Point) []datastructure.CityPoint
}
