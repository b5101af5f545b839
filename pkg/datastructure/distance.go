package datastructure

import "math"

const (
	earthRadiusKM = 6371.0
)

func degreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

// GreatCircleDistance returns the distance in km between two points given in degrees,
// using the spherical law of cosines.
// https://en.wikipedia.org/wiki/Great-circle_distance
func GreatCircleDistance(latOne, lonOne, latTwo, lonTwo float64) float64 {
	if latOne == latTwo && lonOne == lonTwo {
		return 0
	}

	latOne = degreeToRadians(latOne)
	lonOne = degreeToRadians(lonOne)
	latTwo = degreeToRadians(latTwo)
	lonTwo = degreeToRadians(lonTwo)

	cosAngle := math.Cos(latOne)*math.Cos(latTwo)*math.Cos(lonTwo-lonOne) + math.Sin(latOne)*math.Sin(latTwo)

	// rounding can push the cosine slightly outside [-1, 1] for (nearly) coincident or antipodal points.
	cosAngle = math.Max(-1, math.Min(1, cosAngle))

	return math.Acos(cosAngle) * earthRadiusKM
}
