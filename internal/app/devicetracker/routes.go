package devicetracker

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/phytocheck/internal/http/handlers/device/increment"
	"github.com/magabrotheeeer/phytocheck/internal/http/handlers/device/read"
	devicesync "github.com/magabrotheeeer/phytocheck/internal/http/handlers/device/sync"
	"github.com/magabrotheeeer/phytocheck/internal/http/middlewarectx"
)

// DeviceService объединяет операции, которые нужны маршрутам устройств.
type DeviceService interface {
	devicesync.Service
	increment.Service
	read.Service
}

// RegisterRoutes регистрирует все маршруты сервиса.
func RegisterRoutes(r chi.Router, logger *slog.Logger, service DeviceService, healthHandler http.Handler, limiter *rate.Limiter) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1/device", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
		r.Post("/sync", devicesync.New(logger, service).ServeHTTP)
		r.Post("/increment-search", increment.New(logger, service).ServeHTTP)
		r.Get("/{id}", read.New(logger, service).ServeHTTP)
	})

	r.Get("/health", healthHandler.ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
