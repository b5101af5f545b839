package http

import (
	"context"

	"github.com/lintang-b-s/nearest-cities/pkg/di/config"
	http_router "github.com/lintang-b-s/nearest-cities/pkg/http/http-router"
	"github.com/lintang-b-s/nearest-cities/pkg/http/http-router/controllers"
	http_server "github.com/lintang-b-s/nearest-cities/pkg/http/server"
	"github.com/lintang-b-s/nearest-cities/pkg/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the API in the background. Wait blocks until it stops.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,
	cfg *config.Config,
	metricsProvider *metrics.Provider,

	cityService controllers.CityService,

) (*Server, error) {
	serverConfig := http_server.Config{
		Port:    cfg.APIPort,
		Timeout: cfg.APITimeout,
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	server := http_router.NewAPI(log, metricsProvider, limiter)

	s.g = &errgroup.Group{}

	s.g.Go(func() error {
		return server.Run(
			ctx, serverConfig, cityService,
		)
	})

	return s, nil

}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}
