package http_server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"
)

type Config struct {
	Port    int
	Timeout time.Duration
}

// New builds the http.Server. every request context derives from ctx, so cancelling ctx cancels in-flight requests.
func New(ctx context.Context, h http.Handler, config Config) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Port),
		Handler: http.TimeoutHandler(h, config.Timeout, `{"error":{"code":"timeout","message":"request timed out"}}`),
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
		ReadTimeout:       config.Timeout,
		WriteTimeout:      config.Timeout + time.Second,
		ReadHeaderTimeout: config.Timeout,
		IdleTimeout:       30 * time.Second,
	}
}
