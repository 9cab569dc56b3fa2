// Package app wires the sales service: dependencies, HTTP routes and the gRPC server.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/salescost/internal/config"
	"github.com/abgdnv/salescost/internal/platform/web"
	"github.com/abgdnv/salescost/internal/sales"
	"github.com/abgdnv/salescost/internal/sales/handler"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is reported by the gRPC health service.
const ServiceName = "sales.v1.SalesService"

type Dependencies struct {
	Calculator handler.Calculator
	Registry   *prometheus.Registry
	Logger     *slog.Logger
}

// SetupDependencies builds the sales service and a metrics registry with the Go and process collectors.
func SetupDependencies(cfg *config.Config, logger *slog.Logger) *Dependencies {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Dependencies{
		Calculator: sales.NewService(logger, sales.Config{WarnDuplicates: cfg.WarnDuplicates()}),
		Registry:   reg,
		Logger:     logger,
	}
}

// SetupHttpHandler builds the router with middleware and all routes.
// Used by E2E tests to run the service inside an httptest.Server.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	sApi := handler.NewAPI(deps.Calculator, deps.Logger)
	metrics := web.NewMetrics(deps.Registry)

	mux := chi.NewRouter()
	mux.Use(web.RequestIDInjector)
	mux.Use(web.StructuredLogger(deps.Logger))
	mux.Use(web.Recoverer(deps.Logger))
	mux.Use(metrics.Middleware)

	mux.Route("/api/v1/sales", func(r chi.Router) {
		r.Post("/total", sApi.Total)
	})

	mux.Get("/healthz", sApi.HealthCheck)
	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{Registry: deps.Registry}))

	return mux
}

// SetupHttpServer creates the HTTP server for the sales service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPServer.Port),
		Handler:           SetupHttpHandler(deps),
		ReadTimeout:       cfg.HTTPServer.Timeout.Read,
		WriteTimeout:      cfg.HTTPServer.Timeout.Write,
		IdleTimeout:       cfg.HTTPServer.Timeout.Idle,
		ReadHeaderTimeout: cfg.HTTPServer.Timeout.Header,
	}
}

// SetupGrpcServer creates the gRPC server with the standard health service registered.
// Both the overall and the named service status start as SERVING.
func SetupGrpcServer(reflectionEnabled bool) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	if reflectionEnabled {
		reflection.Register(grpcServer)
	}
	return grpcServer, healthServer
}
