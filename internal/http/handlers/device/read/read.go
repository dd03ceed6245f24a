// Package read реализует диагностический HTTP-обработчик чтения устройства.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/phytocheck/internal/http/response"
	"github.com/magabrotheeeer/phytocheck/internal/lib/sl"
	"github.com/magabrotheeeer/phytocheck/internal/models"
	deviceservice "github.com/magabrotheeeer/phytocheck/internal/services/device"
	"github.com/magabrotheeeer/phytocheck/internal/storage"
)

// Handler отдаёт запись устройства.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает чтение устройства.
type Service interface {
	Get(ctx context.Context, deviceID string) (*models.Device, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить устройство
// @Description Возвращает счётчик поисков и флаг Premium устройства.
// @Tags Devices
// @Produce  json
// @Param id path string true "Идентификатор устройства"
// @Success 200 {object} models.Device "Запись устройства"
// @Failure 404 {object} response.ErrorResponse "Устройство не найдено"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /device/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")
	if id == "" || len(id) > 255 {
		log.Error("invalid device id in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid device id"))
		return
	}

	device, err := h.service.Get(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrDeviceNotFound):
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("device not found"))
		return
	case errors.Is(err, deviceservice.ErrUnavailable):
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("device storage unavailable"))
		return
	case err != nil:
		log.Error("failed to read device", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read device"))
		return
	}

	render.JSON(w, r, response.OKWithData(device))
}
