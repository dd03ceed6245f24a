// Package increment реализует HTTP-обработчик учёта поиска устройства.
package increment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/phytocheck/internal/http/response"
	"github.com/magabrotheeeer/phytocheck/internal/lib/sl"
	"github.com/magabrotheeeer/phytocheck/internal/models"
)

// Handler управляет запросами учёта поиска.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику учёта поиска.
type Service interface {
	IncrementSearch(ctx context.Context, req models.DeviceRequest) models.IncrementResult
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Учесть поиск
// @Description Увеличивает счётчик поисков устройства, если квота не исчерпана. Отказ возвращается с кодом 200 и allowed=false.
// @Tags Devices
// @Accept  json
// @Produce  json
// @Param request body models.DeviceRequest true "Идентификатор устройства и флаг Premium"
// @Success 200 {object} models.IncrementResult "Решение по поиску"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Router /device/increment-search [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.device.increment"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	res := h.service.IncrementSearch(r.Context(), req)
	log.Debug("search counted", sl.Device(req.DeviceID), slog.Bool("allowed", res.Allowed), slog.Int("search_count", res.SearchCount))
	render.JSON(w, r, response.OKWithData(res))
}
