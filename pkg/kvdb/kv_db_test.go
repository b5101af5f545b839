package kvdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lintang-b-s/nearest-cities/pkg"
	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.etcd.io/bbolt"
)

func newTestStore(t *testing.T) *CityStore {
	t.Helper()
	db, err := bbolt.Open(filepath.Join(t.TempDir(), "cities.db"), 0600, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewCityStore(db)
	require.NoError(t, err)
	return store
}

func TestSaveAndGetCity(t *testing.T) {
	store := newTestStore(t)

	surakarta, err := store.SaveCity("  Surakarta ", -7.5755, 110.8243)
	require.NoError(t, err)
	assert.Equal(t, 1, surakarta.ID)
	assert.Equal(t, "Surakarta", surakarta.Name)

	jakarta, err := store.SaveCity("Jakarta", -6.2088, 106.8456)
	require.NoError(t, err)
	assert.Equal(t, 2, jakarta.ID)

	got, err := store.GetCity(surakarta.ID)
	require.NoError(t, err)
	assert.Equal(t, surakarta, got)

	got, err = store.GetCityByName("SURAKARTA")
	require.NoError(t, err)
	assert.Equal(t, surakarta, got)

	n, err := store.CountCities()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSaveCityConflict(t *testing.T) {
	store := newTestStore(t)

	_, err := store.SaveCity("Yogyakarta", -7.7956, 110.3695)
	require.NoError(t, err)

	tests := []struct {
		name     string
		cityName string
		code     error
	}{
		{"same name", "Yogyakarta", pkg.ErrConflict},
		{"different case and spaces", " yogyaKARTA  ", pkg.ErrConflict},
		{"blank name", "   ", pkg.ErrBadParamInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.SaveCity(tt.cityName, 0, 0)
			assert.True(t, pkg.HasCode(err, tt.code))
		})
	}

	n, err := store.CountCities()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSaveCities(t *testing.T) {
	store := newTestStore(t)
	_, err := store.SaveCity("Klaten", -7.7058, 110.6064)
	require.NoError(t, err)

	saved, skipped, err := store.SaveCities([]CityInput{
		{Name: "Boyolali", Lat: -7.5333, Lon: 110.6000},
		{Name: "klaten ", Lat: 0, Lon: 0},
		{Name: "  ", Lat: 0, Lon: 0},
		{Name: "Sukoharjo", Lat: -7.6808, Lon: 110.8417},
		{Name: "BOYOLALI", Lat: 0, Lon: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Equal(t, 3, skipped)

	sukoharjo, err := store.GetCityByName("sukoharjo")
	require.NoError(t, err)
	assert.Equal(t, 3, sukoharjo.ID)

	n, err := store.CountCities()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestGetCityNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetCity(7)
	assert.True(t, pkg.HasCode(err, pkg.ErrNotFound))

	_, err = store.GetCityByName("atlantis")
	assert.True(t, pkg.HasCode(err, pkg.ErrNotFound))
}

func TestDeleteCity(t *testing.T) {
	store := newTestStore(t)

	bandung, err := store.SaveCity("Bandung", -6.9175, 107.6191)
	require.NoError(t, err)

	deleted, err := store.DeleteCity(bandung.ID)
	require.NoError(t, err)
	assert.Equal(t, bandung, deleted)

	_, err = store.GetCity(bandung.ID)
	assert.True(t, pkg.HasCode(err, pkg.ErrNotFound))
	_, err = store.GetCityByName("bandung")
	assert.True(t, pkg.HasCode(err, pkg.ErrNotFound))

	_, err = store.DeleteCity(bandung.ID)
	assert.True(t, pkg.HasCode(err, pkg.ErrNotFound))

	t.Run("name is free again, id is not reused", func(t *testing.T) {
		again, err := store.SaveCity("Bandung", -6.9175, 107.6191)
		require.NoError(t, err)
		assert.NotEqual(t, bandung.ID, again.ID)
	})
}

func TestListCitiesAndPoints(t *testing.T) {
	store := newTestStore(t)
	names := []string{"Medan", "Padang", "Palembang", "Bogor", "Malang"}
	for i, name := range names {
		_, err := store.SaveCity(name, float64(i), float64(-i))
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		skip     int
		limit    int
		expected []string
	}{
		{"first page", 0, 2, []string{"Medan", "Padang"}},
		{"second page", 2, 2, []string{"Palembang", "Bogor"}},
		{"past the end", 4, 20, []string{"Malang"}},
		{"skip everything", 10, 20, []string{}},
		{"zero limit", 0, 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cities, err := store.ListCities(tt.skip, tt.limit)
			require.NoError(t, err)
			got := []string{}
			for _, c := range cities {
				got = append(got, c.Name)
			}
			assert.Equal(t, tt.expected, got)
		})
	}

	points, err := store.Points()
	require.NoError(t, err)
	assert.Len(t, points, len(names))
	assert.Equal(t, datastructure.NewCityPoint(3, 2, -2), points[2])
}

func TestRequestLog(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2024, 10, 1, 8, 0, 0, 0, time.UTC)

	entries := []datastructure.RequestLog{
		{Type: datastructure.RequestAdd, CityID: 1, Name: "Semarang", Lat: -6.9667, Lon: 110.4167, RequestTime: now},
		{Type: datastructure.RequestNearest, Lat: -6.9, Lon: 110.4, RequestTime: now.Add(time.Second)},
		{Type: datastructure.RequestDelete, CityID: 1, Name: "Semarang", Lat: -6.9667, Lon: 110.4167, RequestTime: now.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, store.LogRequest(e))
	}

	got, err := store.ListRequests(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(3), got[0].ID)
	assert.Equal(t, datastructure.RequestDelete, got[0].Type)
	assert.Equal(t, datastructure.RequestNearest, got[1].Type)
	assert.True(t, now.Add(time.Second).Equal(got[1].RequestTime))

	all, err := store.ListRequests(100)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
