package http_router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lintang-b-s/nearest-cities/pkg/http/http-router/controllers"
	router_helper "github.com/lintang-b-s/nearest-cities/pkg/http/http-router/router-helper"
	http_server "github.com/lintang-b-s/nearest-cities/pkg/http/server"
	"github.com/lintang-b-s/nearest-cities/pkg/metrics"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 10 * time.Second

type API struct {
	log     *zap.Logger
	metrics *metrics.Provider
	limiter *rate.Limiter
}

func NewAPI(log *zap.Logger, metricsProvider *metrics.Provider, limiter *rate.Limiter) *API {
	return &API{log: log, metrics: metricsProvider, limiter: limiter}
}

// Handler wires routes and the middleware chain.
func (api *API) Handler(cityService controllers.CityService) http.Handler {
	router := httprouter.New()

	corsHandler := cors.New(cors.Options{ //nolint:gocritic // ignore
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, //nolint:mnd // ignore
	})

	router.Handler(http.MethodGet, "/metrics", api.metrics.Handler())

	group := router_helper.NewRouteGroup(router, "/api")
	cityRoutes := controllers.New(cityService, api.log)
	cityRoutes.Routes(group)

	return alice.New(corsHandler.Handler, api.recoverPanic, RealIP, Heartbeat("healthz"),
		Logger(api.log), RateLimit(api.limiter), EnforceJSONHandler).Then(router)
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
func (api *API) Run(
	ctx context.Context,
	config http_server.Config,
	cityService controllers.CityService,
) error {
	api.log.Info("Run httprouter API")

	srv := http_server.New(ctx, api.Handler(cityService), config)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		api.log.Info(fmt.Sprintf("API run on port %d", config.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		api.log.Info("shutting down API")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
