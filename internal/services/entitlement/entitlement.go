// Package entitlement содержит локальное хранилище прав установки:
// склад, счётчик поисков и кеш статуса Premium. Все операции
// чтения-изменения-записи сериализуются внутри Store.
package entitlement

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/magabrotheeeer/phytocheck/internal/kvstore"
	"github.com/magabrotheeeer/phytocheck/internal/lib/sl"
	"github.com/magabrotheeeer/phytocheck/internal/models"
	"github.com/magabrotheeeer/phytocheck/internal/services/billing"
)

// Ключи локального хранилища.
const (
	KeyStock       = "phytocheck_stock"
	KeySearchCount = "phytocheck_search_count"
	KeyPremium     = "@phytocheck_premium_status"
)

// Store - сервис локальных прав установки. Создаётся один раз при старте
// и передаётся зависимым компонентам.
type Store struct {
	kv  kvstore.Store
	log *slog.Logger
	now func() time.Time

	mu       sync.Mutex
	verified *models.PremiumState
}

// Option настраивает Store.
type Option func(*Store)

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New создаёт Store поверх хранилища ключ-значение.
func New(kv kvstore.Store, log *slog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:  kv,
		log: log,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ===== STOCK =====

// Stock возвращает содержимое склада. Повреждённые данные считаются пустым складом.
func (s *Store) Stock(ctx context.Context) ([]models.StockItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readStock(ctx)
}

// StockMutation получает текущий склад и флаг Premium и возвращает новый склад.
// Если write равен false, запись не выполняется.
type StockMutation func(items []models.StockItem, premium bool) (updated []models.StockItem, write bool, err error)

// UpdateStock выполняет чтение-изменение-запись склада под блокировкой.
// При ошибке чтения, мутации или записи предыдущее состояние не меняется.
func (s *Store) UpdateStock(ctx context.Context, fn StockMutation) error {
	const op = "entitlement.UpdateStock"

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readStock(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	premium, err := s.readPremium(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	updated, write, err := fn(items, premium.IsPremium())
	if err != nil {
		return err
	}
	if !write {
		return nil
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.kv.Set(ctx, KeyStock, string(data)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) readStock(ctx context.Context) ([]models.StockItem, error) {
	const op = "entitlement.readStock"

	raw, err := s.kv.Get(ctx, KeyStock)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []models.StockItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var items []models.StockItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("malformed stock data, using empty stock", slog.String("key", KeyStock), sl.Err(err))
		return []models.StockItem{}, nil
	}
	if items == nil {
		items = []models.StockItem{}
	}
	return items, nil
}

// ===== SEARCH COUNT =====

// SearchCount возвращает локальный счётчик поисков.
func (s *Store) SearchCount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readSearchCount(ctx)
}

// IncrementSearchCount увеличивает локальный счётчик на единицу и возвращает новое значение.
func (s *Store) IncrementSearchCount(ctx context.Context) (int, error) {
	const op = "entitlement.IncrementSearchCount"

	s.mu.Lock()
	defer s.mu.Unlock()

	count, err := s.readSearchCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count++
	if err := s.kv.Set(ctx, KeySearchCount, strconv.Itoa(count)); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// SetSearchCount записывает значение счётчика. Отрицательные значения приводятся к нулю.
func (s *Store) SetSearchCount(ctx context.Context, count int) error {
	const op = "entitlement.SetSearchCount"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, KeySearchCount, strconv.Itoa(max(count, 0))); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Store) readSearchCount(ctx context.Context) (int, error) {
	const op = "entitlement.readSearchCount"

	raw, err := s.kv.Get(ctx, KeySearchCount)
	if errors.Is(err, kvstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		s.log.Warn("malformed search count, using 0", slog.String("key", KeySearchCount), slog.String("value", raw))
		return 0, nil
	}
	return count, nil
}

// ===== PREMIUM =====

// Premium возвращает состояние Premium: подтверждённое в этой сессии,
// если оно есть, иначе значение из локального кеша.
func (s *Store) Premium(ctx context.Context) (models.PremiumState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readPremium(ctx)
}

// IsPremium возвращает последнее известное значение флага Premium.
// Ошибка чтения трактуется как отсутствие Premium.
func (s *Store) IsPremium(ctx context.Context) bool {
	state, err := s.Premium(ctx)
	if err != nil {
		s.log.Warn("failed to read premium status", sl.Err(err))
		return false
	}
	return state.IsPremium()
}

// LoadPremiumStatus возвращает сохранённый статус или статус по умолчанию
// (без Premium, без типа подписки).
func (s *Store) LoadPremiumStatus(ctx context.Context) models.PremiumStatus {
	state, err := s.Premium(ctx)
	if err != nil {
		s.log.Warn("failed to load premium status", sl.Err(err))
		return s.defaultPremium()
	}
	return state.Status()
}

// SavePremiumStatus сохраняет статус как есть и помечает его подтверждённым.
// Нулевая дата транзакции заменяется текущим временем.
func (s *Store) SavePremiumStatus(ctx context.Context, status models.PremiumStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.savePremiumLocked(ctx, status)
}

// SetPremium меняет флаг Premium, сохраняя известный тип подписки.
func (s *Store) SetPremium(ctx context.Context, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readPremium(ctx)
	subType := models.SubscriptionNone
	if err != nil {
		s.log.Warn("failed to load premium status", sl.Err(err))
	} else {
		subType = current.Status().SubscriptionType
	}
	return s.savePremiumLocked(ctx, models.PremiumStatus{
		IsPremium:        value,
		SubscriptionType: subType,
	})
}

func (s *Store) savePremiumLocked(ctx context.Context, status models.PremiumStatus) error {
	const op = "entitlement.SavePremiumStatus"

	if status.TransactionDate.IsZero() {
		status.TransactionDate = s.now().UTC()
	}
	if !status.IsPremium {
		status.SubscriptionType = models.SubscriptionNone
	}

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.kv.Set(ctx, KeyPremium, string(data)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	state := models.Verified(status, s.now())
	s.verified = &state
	return nil
}

// ApplyVerdict сохраняет результат проверки покупок как подтверждённый статус.
func (s *Store) ApplyVerdict(ctx context.Context, v billing.Verdict) error {
	return s.SavePremiumStatus(ctx, v.PremiumStatus())
}

// ResetPremiumStatus удаляет сохранённый статус Premium.
func (s *Store) ResetPremiumStatus(ctx context.Context) error {
	const op = "entitlement.ResetPremiumStatus"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, KeyPremium); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.verified = nil
	return nil
}

// Reset обнуляет счётчик поисков и снимает Premium. Склад не затрагивается.
func (s *Store) Reset(ctx context.Context) error {
	const op = "entitlement.Reset"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, KeySearchCount, "0"); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.kv.Delete(ctx, KeyPremium); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.verified = nil
	return nil
}

func (s *Store) readPremium(ctx context.Context) (models.PremiumState, error) {
	const op = "entitlement.readPremium"

	if s.verified != nil {
		return *s.verified, nil
	}

	raw, err := s.kv.Get(ctx, KeyPremium)
	if errors.Is(err, kvstore.ErrNotFound) {
		return models.Cached(s.defaultPremium(), time.Time{}), nil
	}
	if err != nil {
		return models.PremiumState{}, fmt.Errorf("%s: %w", op, err)
	}

	var status models.PremiumStatus
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		s.log.Warn("malformed premium status, using default", slog.String("key", KeyPremium), sl.Err(err))
		return models.Cached(s.defaultPremium(), time.Time{}), nil
	}
	status.SubscriptionType = models.ParseSubscriptionType(string(status.SubscriptionType))
	return models.Cached(status, status.TransactionDate), nil
}

func (s *Store) defaultPremium() models.PremiumStatus {
	return models.PremiumStatus{
		IsPremium:        false,
		SubscriptionType: models.SubscriptionNone,
		TransactionDate:  s.now().UTC(),
	}
}
