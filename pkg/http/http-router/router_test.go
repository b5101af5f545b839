package http_router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lintang-b-s/nearest-cities/pkg/datastructure"
	"github.com/lintang-b-s/nearest-cities/pkg/http/usecases"
	"github.com/lintang-b-s/nearest-cities/pkg/metrics"
	"github.com/stretchr/testify/assert"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type stubCityService struct{}

func (stubCityService) AddCity(name string, lat, lon float64) (datastructure.City, error) {
	return datastructure.NewCity(1, name, lat, lon), nil
}

func (stubCityService) ListCities(skip, limit int) ([]datastructure.City, error) {
	return []datastructure.City{}, nil
}

func (stubCityService) GetCity(name string) (datastructure.City, error) {
	panic("store exploded")
}

func (stubCityService) DeleteCity(name string) (datastructure.City, error) {
	return datastructure.City{}, nil
}

func (stubCityService) NearestCities(query usecases.NearestQuery) ([]datastructure.RankedNeighbor, error) {
	return []datastructure.RankedNeighbor{}, nil
}

func (stubCityService) RequestHistory(limit int) ([]datastructure.RequestLog, error) {
	return []datastructure.RequestLog{}, nil
}

func newTestHandler(limiter *rate.Limiter) http.Handler {
	api := NewAPI(zap.NewNop(), metrics.New("test"), limiter)
	return api.Handler(stubCityService{})
}

func TestHandler(t *testing.T) {
	h := newTestHandler(rate.NewLimiter(rate.Inf, 0))

	tests := []struct {
		name        string
		method      string
		target      string
		body        string
		contentType string
		status      int
		contains    string
	}{
		{"heartbeat", http.MethodGet, "/healthz", "", "", http.StatusOK, "."},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK, "app_build_info"},
		{"api route", http.MethodGet, "/api/cities", "", "", http.StatusOK, `"data"`},
		{"json body", http.MethodPost, "/api/cities", `{"name":"Solo","lat":1,"lon":1}`, "application/json; charset=utf-8", http.StatusCreated, "Solo"},
		{"form body", http.MethodPost, "/api/cities", `name=Solo`, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType, "unsupported_media_type"},
		{"panic is recovered", http.MethodGet, "/api/cities/Solo", "", "", http.StatusInternalServerError, "internal_server_error"},
		{"unknown route", http.MethodGet, "/api/unknown", "", "", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.contains)
		})
	}
}

func TestRateLimit(t *testing.T) {
	h := newTestHandler(rate.NewLimiter(rate.Limit(0.001), 2))

	codes := []int{}
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/cities", nil))
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// heartbeat is answered before the limiter
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddlewareErrorEnvelope(t *testing.T) {
	h := newTestHandler(rate.NewLimiter(rate.Limit(0.001), 1))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/cities", strings.NewReader("name=Solo")))
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":{"code":"unsupported_media_type","message":"Content-Type header must be application/json"}}`,
		rr.Body.String())

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/cities", nil))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"error":{"code":"rate_limited","message":"rate limit exceeded"}}`, rr.Body.String())
}

func TestRealIP(t *testing.T) {
	var got string
	h := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.RemoteAddr
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "203.0.113.7", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "not-an-ip")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "192.0.2.1:1234", got)
}
