package metrics_di

import (
	"github.com/lintang-b-s/nearest-cities/pkg/metrics"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func New() *metrics.Provider {
	return metrics.New(Version)
}

func NewCityMetrics(p *metrics.Provider) *metrics.CityMetrics {
	return metrics.NewCityMetrics(p)
}
