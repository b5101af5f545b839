package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lintang-b-s/nearest-cities/pkg"
	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
	helper "github.com/lintang-b-s/nearest-cities/pkg/http/http-router/router-helper"
	"github.com/lintang-b-s/nearest-cities/pkg/http/usecases"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

type fakeCityService struct {
	cities       map[string]datastructure.City
	lastQuery    usecases.NearestQuery
	lastSkip     int
	lastLimit    int
	nearest      []datastructure.RankedNeighbor
	nearestErr   error
	historyLimit int
}

func newFakeCityService() *fakeCityService {
	return &fakeCityService{cities: map[string]datastructure.City{
		"surakarta": datastructure.NewCity(1, "Surakarta", -7.5755, 110.8243),
	}}
}

func (f *fakeCityService) AddCity(name string, lat, lon float64) (datastructure.City, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if _, ok := f.cities[key]; ok {
		return datastructure.City{}, pkg.WrapErrorf(nil, pkg.ErrConflict, "city %s already exists", name)
	}
	city := datastructure.NewCity(len(f.cities)+1, strings.TrimSpace(name), lat, lon)
	f.cities[key] = city
	return city, nil
}

func (f *fakeCityService) ListCities(skip, limit int) ([]datastructure.City, error) {
	f.lastSkip, f.lastLimit = skip, limit
	return []datastructure.City{f.cities["surakarta"]}, nil
}

func (f *fakeCityService) GetCity(name string) (datastructure.City, error) {
	city, ok := f.cities[strings.ToLower(name)]
	if !ok {
		return datastructure.City{}, pkg.WrapErrorf(nil, pkg.ErrNotFound, "city %s not found", name)
	}
	return city, nil
}

func (f *fakeCityService) DeleteCity(name string) (datastructure.City, error) {
	city, err := f.GetCity(name)
	if err != nil {
		return city, err
	}
	delete(f.cities, strings.ToLower(name))
	return city, nil
}

func (f *fakeCityService) NearestCities(query usecases.NearestQuery) ([]datastructure.RankedNeighbor, error) {
	f.lastQuery = query
	return f.nearest, f.nearestErr
}

func (f *fakeCityService) RequestHistory(limit int) ([]datastructure.RequestLog, error) {
	f.historyLimit = limit
	return []datastructure.RequestLog{}, nil
}

func newTestRouter(service CityService) *httprouter.Router {
	router := httprouter.New()
	New(service, zap.NewNop()).Routes(helper.NewRouteGroup(router, "/api"))
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestAddCity(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"created", `{"name":"Jakarta","lat":-6.2088,"lon":106.8456}`, http.StatusCreated, ""},
		{"zero coordinates are valid", `{"name":"Null Island","lat":0,"lon":0}`, http.StatusCreated, ""},
		{"duplicate", `{"name":" SURAKARTA ","lat":1,"lon":1}`, http.StatusConflict, "conflict"},
		{"missing lat", `{"name":"Bogor","lon":106.8}`, http.StatusBadRequest, "bad_request"},
		{"lat out of range", `{"name":"Bogor","lat":91,"lon":106.8}`, http.StatusBadRequest, "bad_request"},
		{"blank name", `{"name":"   ","lat":1,"lon":1}`, http.StatusBadRequest, "bad_request"},
		{"unknown field", `{"name":"Bogor","lat":1,"lon":1,"population":1}`, http.StatusBadRequest, "bad_request"},
		{"malformed", `{"name":`, http.StatusBadRequest, "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(newFakeCityService())
			rr := serve(router, http.MethodPost, "/api/cities", tt.body)
			assert.Equal(t, tt.status, rr.Code)
			if tt.code != "" {
				assert.Equal(t, tt.code, decodeError(t, rr).Error.Code)
			}
		})
	}

	t.Run("response body", func(t *testing.T) {
		router := newTestRouter(newFakeCityService())
		rr := serve(router, http.MethodPost, "/api/cities", `{"name":"Jakarta","lat":-6.2088,"lon":106.8456}`)
		require.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			Data datastructure.City `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Jakarta", resp.Data.Name)
		assert.Equal(t, -6.2088, resp.Data.Lat)
		assert.Equal(t, "/api/cities/Jakarta", rr.Header().Get("Location"))
	})
}

func TestGetAndDeleteCity(t *testing.T) {
	router := newTestRouter(newFakeCityService())

	rr := serve(router, http.MethodGet, "/api/cities/Surakarta", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"latitude": -7.5755`)

	rr = serve(router, http.MethodDelete, "/api/cities/Surakarta", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Data struct {
			Detail string `json:"detail"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "City Surakarta deleted and logged", resp.Data.Detail)

	rr = serve(router, http.MethodGet, "/api/cities/Surakarta", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	errResp := decodeError(t, rr)
	assert.Equal(t, "not_found", errResp.Error.Code)
	assert.Equal(t, "city Surakarta not found", errResp.Error.Message)

	rr = serve(router, http.MethodDelete, "/api/cities/Surakarta", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListCities(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		status    int
		wantSkip  int
		wantLimit int
	}{
		{"defaults", "/api/cities", http.StatusOK, 0, usecases.DefaultListLimit},
		{"paged", "/api/cities?skip=40&limit=10", http.StatusOK, 40, 10},
		{"negative skip", "/api/cities?skip=-1", http.StatusBadRequest, 0, 0},
		{"limit too large", "/api/cities?limit=101", http.StatusBadRequest, 0, 0},
		{"limit not a number", "/api/cities?limit=ten", http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newFakeCityService()
			rr := serve(newTestRouter(service), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.wantSkip, service.lastSkip)
				assert.Equal(t, tt.wantLimit, service.lastLimit)
			}
		})
	}
}

func TestNearestCities(t *testing.T) {
	t.Run("coordinates", func(t *testing.T) {
		service := newFakeCityService()
		service.nearest = []datastructure.RankedNeighbor{
			{ID: 2, Name: "B", Lat: 0, Lon: 1, DistanceKM: 111.19},
			{ID: 3, Name: "C", Lat: 0, Lon: 2, DistanceKM: 222.39},
		}

		rr := serve(newTestRouter(service), http.MethodGet, "/api/nearest-cities?lat=0&lon=0", "")
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, service.lastQuery.Lat)
		require.NotNil(t, service.lastQuery.Lon)
		assert.Nil(t, service.lastQuery.CityName)
		assert.Equal(t, 0.0, *service.lastQuery.Lat)

		var resp nearestCitiesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Len(t, resp.Data, 2)
		assert.Equal(t, 222.39, resp.Data[1].DistanceKM)
		assert.Contains(t, rr.Body.String(), `"distance_km"`)
	})

	t.Run("city name", func(t *testing.T) {
		service := newFakeCityService()
		rr := serve(newTestRouter(service), http.MethodGet, "/api/nearest-cities?city_name=Surakarta", "")
		require.Equal(t, http.StatusOK, rr.Code)
		require.NotNil(t, service.lastQuery.CityName)
		assert.Equal(t, "Surakarta", *service.lastQuery.CityName)
		assert.JSONEq(t, `{"data": null}`, rr.Body.String())
	})

	tests := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"lat not a number", "/api/nearest-cities?lat=north&lon=1", nil, http.StatusBadRequest},
		{"lon out of range", "/api/nearest-cities?lat=1&lon=200", nil, http.StatusBadRequest},
		{"NaN", "/api/nearest-cities?lat=NaN&lon=1", nil, http.StatusBadRequest},
		{"service rejects query", "/api/nearest-cities?lat=1",
			pkg.WrapErrorf(nil, pkg.ErrBadParamInput, "either city name or both latitude and longitude must be provided"), http.StatusBadRequest},
		{"unknown city", "/api/nearest-cities?city_name=Atlantis",
			pkg.WrapErrorf(nil, pkg.ErrNotFound, "city Atlantis not found"), http.StatusNotFound},
		{"store failure", "/api/nearest-cities?lat=1&lon=1",
			pkg.WrapErrorf(assert.AnError, pkg.ErrInternalServerError, "nearest cities query failed"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := newFakeCityService()
			service.nearestErr = tt.err
			rr := serve(newTestRouter(service), http.MethodGet, tt.target, "")
			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, pkg.MessageInternalServerError, decodeError(t, rr).Error.Message)
			}
		})
	}
}

func TestRequestHistory(t *testing.T) {
	service := newFakeCityService()
	router := newTestRouter(service)

	rr := serve(router, http.MethodGet, "/api/requests", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, usecases.DefaultHistoryLimit, service.historyLimit)

	rr = serve(router, http.MethodGet, "/api/requests?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
