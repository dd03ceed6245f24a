// Package health реализует эндпоинт проверки состояния сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/phytocheck/internal/http/response"
	"github.com/magabrotheeeer/phytocheck/internal/lib/sl"
)

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler отвечает статусом сервиса и его зависимостей. Недоступная
// зависимость не делает сервис нездоровым: клиенты обслуживаются в
// деградированном режиме.
type Handler struct {
	log  *slog.Logger
	deps map[string]Pinger
}

// New создает новый Handler. Пустые зависимости помечаются как disabled.
func New(log *slog.Logger, deps map[string]Pinger) *Handler {
	return &Handler{
		log:  log,
		deps: deps,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string, len(h.deps))
	status := "ok"
	for name, dep := range h.deps {
		if dep == nil {
			components[name] = "disabled"
			continue
		}
		if err := dep.Ping(ctx); err != nil {
			h.log.Warn("dependency is unavailable", slog.String("op", op), slog.String("component", name), sl.Err(err))
			components[name] = "unavailable"
			status = "degraded"
			continue
		}
		components[name] = "ok"
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"status":     status,
		"components": components,
	}))
}
