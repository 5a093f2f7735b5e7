package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "parley_redis_errors_total",
	Help: "Total number of Redis errors by command",
}, []string{"command"})

// ProviderCalls counts outbound external-provider calls by operation and outcome.
var ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "parley_provider_calls_total",
	Help: "Total number of external provider calls by operation and outcome",
}, []string{"operation", "outcome"})

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the Fiber handler recording HTTP metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
