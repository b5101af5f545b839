//go:build wireinject

//go:generate wire
package di

import (
	"context"

	"github.com/lintang-b-s/nearest-cities/pkg/di/config"
	shortcontext "github.com/lintang-b-s/nearest-cities/pkg/di/context"
	index_di "github.com/lintang-b-s/nearest-cities/pkg/di/index"
	kv_di "github.com/lintang-b-s/nearest-cities/pkg/di/kv"
	logger_di "github.com/lintang-b-s/nearest-cities/pkg/di/logger"
	metrics_di "github.com/lintang-b-s/nearest-cities/pkg/di/metrics"
	service_di "github.com/lintang-b-s/nearest-cities/pkg/di/service"
	citiesHttp "github.com/lintang-b-s/nearest-cities/pkg/http"
	"github.com/lintang-b-s/nearest-cities/pkg/http/http-router/controllers"
	"github.com/lintang-b-s/nearest-cities/pkg/http/usecases"
	"github.com/lintang-b-s/nearest-cities/pkg/metrics"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var defaultSet = wire.NewSet(
	shortcontext.New,
	config.New,
	logger_di.New,
	kv_di.New,
	kv_di.NewLookup,
	index_di.New,
	metrics_di.New,
	metrics_di.NewCityMetrics,
)

var citiesSet = wire.NewSet(
	defaultSet,
	service_di.New,
	wire.Bind(new(controllers.CityService), new(*usecases.CityService)),
	NewCitiesAPIServer,
)

func NewCitiesAPIServer(ctx context.Context, log *zap.Logger, cfg *config.Config, metricsProvider *metrics.Provider,
	cityService controllers.CityService) (*citiesHttp.Server, error) {
	api := citiesHttp.NewServer(log)

	apiService, err := api.Use(
		ctx, log, cfg, metricsProvider, cityService,
	)
	if err != nil {
		return nil, err
	}

	return apiService, nil
}

func InitializeCitiesService() (*citiesHttp.Server, func(), error) {

	panic(wire.Build(citiesSet))
}
