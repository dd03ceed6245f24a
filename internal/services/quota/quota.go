// Package quota сверяет локальный счётчик поисков с серверным счётчиком устройства.
//
// Правила: Premium не ограничивается; бесплатная версия получает FreeSearchLimit
// поисков за всё время. Явный отказ сервера блокирует поиск, недоступность
// сервера поиск не блокирует.
package quota

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/phytocheck/internal/lib/sl"
	"github.com/magabrotheeeer/phytocheck/internal/models"
	"github.com/magabrotheeeer/phytocheck/internal/services/entitlement"
)

const (
	// FreeSearchLimit - число поисков бесплатной версии.
	FreeSearchLimit = 15
	// Unlimited возвращается RemainingSearches для Premium.
	Unlimited = -1
	// DefaultTimeout ограничивает обращения к серверу.
	DefaultTimeout = 5 * time.Second
)

// Verdict - ответ сервера на учёт поиска.
type Verdict int

const (
	// Indeterminate - сервер недоступен или ответ не получен.
	Indeterminate Verdict = iota
	Allowed
	Denied
)

func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case Denied:
		return "denied"
	default:
		return "indeterminate"
	}
}

// DeviceCounter - удалённый счётчик поисков устройства.
type DeviceCounter interface {
	Sync(ctx context.Context, deviceID string, isPremium bool) (models.SyncResult, error)
	IncrementSearch(ctx context.Context, deviceID string, isPremium bool) (models.IncrementResult, error)
}

// Reconciler решает, разрешён ли очередной поиск.
type Reconciler struct {
	store    *entitlement.Store
	remote   DeviceCounter
	deviceID string
	timeout  time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	loaded  bool
	display int
}

// Option настраивает Reconciler.
type Option func(*Reconciler)

// WithTimeout задаёт таймаут обращений к серверу.
func WithTimeout(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// New создаёт Reconciler. Пустой deviceID или nil remote отключают серверную проверку.
func New(store *entitlement.Store, remote DeviceCounter, deviceID string, log *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		store:    store,
		remote:   remote,
		deviceID: deviceID,
		timeout:  DefaultTimeout,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PerformSearch учитывает поиск и сообщает, разрешён ли он.
func (r *Reconciler) PerformSearch(ctx context.Context) bool {
	const op = "quota.PerformSearch"
	log := r.log.With(slog.String("op", op))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded(ctx)

	if r.store.IsPremium(ctx) {
		r.incrementLocal(ctx, log)
		r.display++
		return true
	}

	if r.display >= FreeSearchLimit {
		log.Info("search limit reached", slog.Int("count", r.display))
		return false
	}

	if r.hasRemote() {
		verdict, serverCount := r.incrementRemote(ctx, log)
		switch verdict {
		case Denied:
			log.Info("search denied by server", slog.String("device_id", r.deviceID))
			r.display = FreeSearchLimit
			if err := r.store.SetSearchCount(ctx, FreeSearchLimit); err != nil {
				log.Warn("failed to persist search count", sl.Err(err))
			}
			return false
		case Allowed:
			r.incrementLocal(ctx, log)
			if serverCount >= 0 {
				r.display = serverCount
			} else {
				r.display++
			}
			return true
		}
	}

	r.incrementLocal(ctx, log)
	r.display++
	return true
}

// SetPremium сохраняет флаг Premium и сообщает его серверу. Ошибки сервера
// только логируются.
func (r *Reconciler) SetPremium(ctx context.Context, value bool) error {
	const op = "quota.SetPremium"

	if err := r.store.SetPremium(ctx, value); err != nil {
		return err
	}
	if !r.hasRemote() {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if _, err := r.remote.Sync(callCtx, r.deviceID, value); err != nil {
		r.log.Warn("failed to sync premium status", slog.String("op", op), sl.Err(err))
	}
	return nil
}

// Sync сверяет счётчик с сервером при запуске. Если сервер ответил и не
// находится в режиме offline, его значение становится отображаемым и
// сохраняется локально.
func (r *Reconciler) Sync(ctx context.Context) {
	const op = "quota.Sync"
	log := r.log.With(slog.String("op", op))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded(ctx)

	if !r.hasRemote() {
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	res, err := r.remote.Sync(callCtx, r.deviceID, r.store.IsPremium(ctx))
	if err != nil {
		log.Warn("device sync failed", sl.Err(err))
		return
	}
	if res.Offline {
		log.Debug("device tracker is offline")
		return
	}

	r.display = max(res.SearchCount, 0)
	if err := r.store.SetSearchCount(ctx, r.display); err != nil {
		log.Warn("failed to persist search count", sl.Err(err))
	}
}

// Reset обнуляет счётчик поисков и снимает Premium. Склад не затрагивается.
func (r *Reconciler) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.store.Reset(ctx); err != nil {
		return err
	}
	r.display = 0
	r.loaded = true
	return nil
}

// SearchCount возвращает отображаемый счётчик поисков.
func (r *Reconciler) SearchCount(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded(ctx)
	return r.display
}

// RemainingSearches возвращает число оставшихся поисков или Unlimited.
func (r *Reconciler) RemainingSearches(ctx context.Context) int {
	if r.store.IsPremium(ctx) {
		return Unlimited
	}
	return max(FreeSearchLimit-r.SearchCount(ctx), 0)
}

// CanSearch сообщает, остались ли поиски, без обращения к серверу.
func (r *Reconciler) CanSearch(ctx context.Context) bool {
	return r.RemainingSearches(ctx) != 0
}

func (r *Reconciler) hasRemote() bool {
	return r.remote != nil && r.deviceID != ""
}

func (r *Reconciler) ensureLoaded(ctx context.Context) {
	if r.loaded {
		return
	}
	count, err := r.store.SearchCount(ctx)
	if err != nil {
		r.log.Warn("failed to load search count", sl.Err(err))
		return
	}
	r.display = count
	r.loaded = true
}

func (r *Reconciler) incrementLocal(ctx context.Context, log *slog.Logger) {
	if _, err := r.store.IncrementSearchCount(ctx); err != nil {
		log.Warn("failed to persist search count", sl.Err(err))
	}
}

func (r *Reconciler) incrementRemote(ctx context.Context, log *slog.Logger) (Verdict, int) {
	callCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.remote.IncrementSearch(callCtx, r.deviceID, false)
	if err != nil {
		log.Warn("device tracker unavailable, allowing search", sl.Err(err))
		return Indeterminate, 0
	}
	if !res.Allowed {
		return Denied, res.SearchCount
	}
	return Allowed, res.SearchCount
}
