package datastructure

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/exp/rand"
)

func TestGreatCircleDistance(t *testing.T) {
	tests := []struct {
		name                           string
		latOne, lonOne, latTwo, lonTwo float64
		expected                       float64
		delta                          float64
	}{
		{"london - paris", 51.5074, -0.1278, 48.8566, 2.3522, 343.5, 1.0},
		{"jakarta - surakarta", -6.2088, 106.8456, -7.5755, 110.8243, 465.0, 10.0},
		{"one degree of longitude on the equator", 0, 0, 0, 1, 111.195, 0.01},
		{"pole to pole", 90, 0, -90, 0, math.Pi * earthRadiusKM, 1e-3},
		{"antipodal on the equator", 0, 0, 0, 180, math.Pi * earthRadiusKM, 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, GreatCircleDistance(tt.latOne, tt.lonOne, tt.latTwo, tt.lonTwo), tt.delta)
		})
	}
}

func TestGreatCircleDistanceProperties(t *testing.T) {
	r := rand.New(rand.NewSource(2024))
	randomPoint := func() (float64, float64) {
		return -90 + r.Float64()*180, -180 + r.Float64()*360
	}

	t.Run("zero for coincident points", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			lat, lon := randomPoint()
			assert.Equal(t, 0.0, GreatCircleDistance(lat, lon, lat, lon))
		}
	})

	t.Run("never NaN near coincident points", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			lat, lon := randomPoint()
			d := GreatCircleDistance(lat, lon, lat, math.Nextafter(lon, math.Inf(1)))
			assert.False(t, math.IsNaN(d))
			assert.GreaterOrEqual(t, d, 0.0)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			latA, lonA := randomPoint()
			latB, lonB := randomPoint()
			assert.Equal(t, GreatCircleDistance(latA, lonA, latB, lonB), GreatCircleDistance(latB, lonB, latA, lonA))
		}
	})

	t.Run("triangle inequality", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			latA, lonA := randomPoint()
			latB, lonB := randomPoint()
			latC, lonC := randomPoint()
			ab := GreatCircleDistance(latA, lonA, latB, lonB)
			bc := GreatCircleDistance(latB, lonB, latC, lonC)
			ac := GreatCircleDistance(latA, lonA, latC, lonC)
			assert.LessOrEqual(t, ac, ab+bc+1e-3)
		}
	})
}
