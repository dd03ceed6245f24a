// Package services содержит бизнес-логику серверного учёта поисков устройств.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/phytocheck/internal/cache"
	"github.com/magabrotheeeer/phytocheck/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/phytocheck/internal/lib/sl"
	"github.com/magabrotheeeer/phytocheck/internal/metrics"
	"github.com/magabrotheeeer/phytocheck/internal/models"
)

// ErrUnavailable возвращается, когда база данных не подключена.
var ErrUnavailable = errors.New("device storage unavailable")

// DeviceRepository определяет методы хранилища устройств.
type DeviceRepository interface {
	// SyncDevice создаёт или обновляет устройство.
	SyncDevice(ctx context.Context, deviceID string, isPremium bool) (models.DeviceSync, error)
	// IncrementSearch учитывает поиск с проверкой лимита.
	IncrementSearch(ctx context.Context, deviceID string, limit int) (models.DeviceIncrement, error)
	// GetDevice возвращает устройство по идентификатору.
	GetDevice(ctx context.Context, deviceID string) (*models.Device, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher публикует события устройств.
type EventPublisher interface {
	PublishDeviceEvent(ctx context.Context, event models.DeviceEvent) error
}

// DeviceService реализует учёт поисков. Недоступность базы данных не
// блокирует клиентов: sync отвечает offline, increment разрешает поиск.
type DeviceService struct {
	repo      DeviceRepository
	cache     Cache
	publisher EventPublisher
	metrics   *metrics.Metrics
	log       *slog.Logger

	limit    int
	cacheTTL time.Duration
	now      func() time.Time
}

// Option настраивает DeviceService.
type Option func(*DeviceService)

// WithCache подключает кеш записей устройств.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *DeviceService) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithPublisher подключает публикацию событий.
func WithPublisher(p EventPublisher) Option {
	return func(s *DeviceService) { s.publisher = p }
}

// WithMetrics подключает метрики.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *DeviceService) { s.metrics = m }
}

// NewDeviceService создаёт сервис. repo может быть nil, тогда сервис работает в режиме offline.
func NewDeviceService(repo DeviceRepository, limit int, log *slog.Logger, opts ...Option) *DeviceService {
	s := &DeviceService{
		repo:     repo,
		log:      log,
		limit:    limit,
		cacheTTL: time.Hour,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sync регистрирует устройство и возвращает его счётчик.
func (s *DeviceService) Sync(ctx context.Context, req models.DeviceRequest) models.SyncResult {
	const op = "device.Sync"
	log := s.log.With(sl.Op(op), sl.Device(req.DeviceID))

	offline := models.SyncResult{SearchCount: 0, IsPremium: req.IsPremium, Offline: true}
	if s.repo == nil {
		s.metrics.Sync(true)
		return offline
	}

	res, err := s.repo.SyncDevice(ctx, req.DeviceID, req.IsPremium)
	if err != nil {
		log.Error("failed to sync device", sl.Err(err))
		s.metrics.Sync(true)
		return offline
	}
	s.metrics.Sync(false)
	s.invalidate(ctx, log, req.DeviceID)

	if res.PremiumChanged {
		s.publish(ctx, log, rabbitmq.EventPremiumChanged, res.Device)
	}

	log.Info("device synced", slog.Int("search_count", res.Device.SearchCount))
	return models.SyncResult{
		SearchCount: res.Device.SearchCount,
		IsPremium:   res.Device.IsPremium,
		Offline:     false,
	}
}

// IncrementSearch учитывает поиск устройства.
func (s *DeviceService) IncrementSearch(ctx context.Context, req models.DeviceRequest) models.IncrementResult {
	const op = "device.IncrementSearch"
	log := s.log.With(sl.Op(op), sl.Device(req.DeviceID))

	if req.IsPremium {
		s.metrics.Search(metrics.OutcomeUntracked)
		return models.IncrementResult{Allowed: true, SearchCount: models.UntrackedSearchCount}
	}

	degraded := models.IncrementResult{Allowed: true, SearchCount: 0}
	if s.repo == nil {
		s.metrics.Search(metrics.OutcomeDegraded)
		return degraded
	}

	res, err := s.repo.IncrementSearch(ctx, req.DeviceID, s.limit)
	if err != nil {
		log.Error("failed to increment search", sl.Err(err))
		s.metrics.Search(metrics.OutcomeDegraded)
		return degraded
	}
	s.invalidate(ctx, log, req.DeviceID)

	if !res.Allowed {
		log.Info("search quota exhausted", slog.Int("search_count", res.Device.SearchCount))
		s.metrics.Search(metrics.OutcomeDenied)
		if res.FirstDenial {
			s.publish(ctx, log, rabbitmq.EventQuotaExhausted, res.Device)
		}
		return models.IncrementResult{Allowed: false, SearchCount: res.Device.SearchCount}
	}

	s.metrics.Search(metrics.OutcomeAllowed)
	return models.IncrementResult{Allowed: true, SearchCount: res.Device.SearchCount}
}

// Get возвращает устройство, сначала из кеша.
func (s *DeviceService) Get(ctx context.Context, deviceID string) (*models.Device, error) {
	const op = "device.Get"
	log := s.log.With(sl.Op(op), sl.Device(deviceID))

	if s.cache != nil {
		var d models.Device
		found, err := s.cache.Get(ctx, cache.DeviceKey(deviceID), &d)
		if err != nil {
			log.Warn("failed to read device from cache", sl.Err(err))
		}
		s.metrics.Cache(found)
		if found {
			return &d, nil
		}
	}

	if s.repo == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	d, err := s.repo.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.DeviceKey(deviceID), d, s.cacheTTL); err != nil {
			log.Warn("failed to cache device", sl.Err(err))
		}
	}
	return d, nil
}

func (s *DeviceService) invalidate(ctx context.Context, log *slog.Logger, deviceID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, cache.DeviceKey(deviceID)); err != nil {
		log.Warn("failed to invalidate device cache", sl.Err(err))
	}
}

func (s *DeviceService) publish(ctx context.Context, log *slog.Logger, eventType string, d models.Device) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.PublishDeviceEvent(ctx, models.DeviceEvent{
		Type:        eventType,
		DeviceID:    d.DeviceID,
		SearchCount: d.SearchCount,
		IsPremium:   d.IsPremium,
		OccurredAt:  s.now().UTC(),
	})
	s.metrics.Event(eventType, err)
	if err != nil {
		log.Warn("failed to publish device event", slog.String("type", eventType), sl.Err(err))
	}
}
