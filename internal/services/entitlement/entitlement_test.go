package entitlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/phytocheck/internal/kvstore"
	"github.com/magabrotheeeer/phytocheck/internal/models"
	"github.com/magabrotheeeer/phytocheck/internal/services/billing"
)

// KVMock реализует kvstore.Store
type KVMock struct{ mock.Mock }

func (m *KVMock) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
func (m *KVMock) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}
func (m *KVMock) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

var fixedNow = time.Date(2026, 1, 21, 10, 0, 0, 0, time.UTC)

func newStore(kv kvstore.Store) *Store {
	return New(kv, newNoopLogger(), WithClock(func() time.Time { return fixedNow }))
}

func TestStore_SearchCount(t *testing.T) {
	ctx := context.Background()
	s := newStore(kvstore.NewMemory())

	count, err := s.SearchCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	for want := 1; want <= 3; want++ {
		got, err := s.IncrementSearchCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	require.NoError(t, s.SetSearchCount(ctx, 12))
	count, err = s.SearchCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, count)

	require.NoError(t, s.SetSearchCount(ctx, -5))
	count, err = s.SearchCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestStore_MalformedDataTreatedAsAbsent(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(ctx, KeySearchCount, "not-a-number"))
	require.NoError(t, kv.Set(ctx, KeyStock, "{broken"))
	require.NoError(t, kv.Set(ctx, KeyPremium, "[]"))

	s := newStore(kv)

	count, err := s.SearchCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	items, err := s.Stock(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	status := s.LoadPremiumStatus(ctx)
	assert.False(t, status.IsPremium)
	assert.Equal(t, models.SubscriptionNone, status.SubscriptionType)
}

func TestStore_PremiumDefaults(t *testing.T) {
	ctx := context.Background()
	s := newStore(kvstore.NewMemory())

	status := s.LoadPremiumStatus(ctx)
	assert.False(t, status.IsPremium)
	assert.Equal(t, models.SubscriptionNone, status.SubscriptionType)
	assert.False(t, s.IsPremium(ctx))

	state, err := s.Premium(ctx)
	require.NoError(t, err)
	assert.False(t, state.IsVerified())
}

func TestStore_SaveAndLoadPremium(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := newStore(kv)

	tx := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, s.SavePremiumStatus(ctx, models.PremiumStatus{
		IsPremium:        true,
		SubscriptionType: models.SubscriptionYearly,
		TransactionDate:  tx,
	}))

	state, err := s.Premium(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsPremium())
	assert.True(t, state.IsVerified())

	// новый процесс читает тот же кеш, но значение уже не подтверждено
	restarted := newStore(kv)
	cached, err := restarted.Premium(ctx)
	require.NoError(t, err)
	assert.True(t, cached.IsPremium())
	assert.False(t, cached.IsVerified())
	assert.Equal(t, tx, cached.AsOf())
	assert.Equal(t, models.SubscriptionYearly, cached.Status().SubscriptionType)
}

func TestStore_SetPremium(t *testing.T) {
	ctx := context.Background()
	s := newStore(kvstore.NewMemory())

	require.NoError(t, s.SavePremiumStatus(ctx, models.PremiumStatus{IsPremium: true, SubscriptionType: models.SubscriptionMonthly}))
	require.NoError(t, s.SetPremium(ctx, true))
	status := s.LoadPremiumStatus(ctx)
	assert.True(t, status.IsPremium)
	assert.Equal(t, models.SubscriptionMonthly, status.SubscriptionType)
	assert.Equal(t, fixedNow, status.TransactionDate)

	require.NoError(t, s.SetPremium(ctx, false))
	status = s.LoadPremiumStatus(ctx)
	assert.False(t, status.IsPremium)
	assert.Equal(t, models.SubscriptionNone, status.SubscriptionType)
}

func TestStore_Reset(t *testing.T) {
	ctx := context.Background()
	kv := kvstore.NewMemory()
	s := newStore(kv)

	_, err := s.IncrementSearchCount(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SetPremium(ctx, true))
	require.NoError(t, s.UpdateStock(ctx, func(items []models.StockItem, _ bool) ([]models.StockItem, bool, error) {
		return append(items, models.StockItem{Quantity: 1, Unit: models.UnitLiters}), true, nil
	}))

	require.NoError(t, s.Reset(ctx))
	require.NoError(t, s.Reset(ctx))

	count, err := s.SearchCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.False(t, s.IsPremium(ctx))

	items, err := s.Stock(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1, "reset keeps stock")
}

func TestStore_ResetPremiumStatus(t *testing.T) {
	ctx := context.Background()
	s := newStore(kvstore.NewMemory())

	require.NoError(t, s.SetPremium(ctx, true))
	require.NoError(t, s.ResetPremiumStatus(ctx))
	assert.False(t, s.IsPremium(ctx))
}

func TestStore_UpdateStock(t *testing.T) {
	ctx := context.Background()
	s := newStore(kvstore.NewMemory())

	t.Run("мутация получает флаг premium", func(t *testing.T) {
		require.NoError(t, s.SetPremium(ctx, true))
		var seen bool
		require.NoError(t, s.UpdateStock(ctx, func(items []models.StockItem, premium bool) ([]models.StockItem, bool, error) {
			seen = premium
			return items, false, nil
		}))
		assert.True(t, seen)
	})

	t.Run("ошибка мутации не меняет склад", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.UpdateStock(ctx, func(_ []models.StockItem, _ bool) ([]models.StockItem, bool, error) {
			return []models.StockItem{{Quantity: 1}}, true, boom
		})
		assert.ErrorIs(t, err, boom)

		items, err := s.Stock(ctx)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestStore_StorageErrors(t *testing.T) {
	ctx := context.Background()
	ioErr := errors.New("disk full")

	t.Run("ошибка записи счётчика", func(t *testing.T) {
		kv := new(KVMock)
		kv.On("Get", mock.Anything, KeySearchCount).Return("2", nil)
		kv.On("Set", mock.Anything, KeySearchCount, "3").Return(ioErr)

		_, err := newStore(kv).IncrementSearchCount(ctx)
		assert.ErrorIs(t, err, ioErr)
		kv.AssertExpectations(t)
	})

	t.Run("ошибка чтения склада", func(t *testing.T) {
		kv := new(KVMock)
		kv.On("Get", mock.Anything, KeyStock).Return("", ioErr)

		err := newStore(kv).UpdateStock(ctx, func(items []models.StockItem, _ bool) ([]models.StockItem, bool, error) {
			t.Fatal("mutation must not run")
			return items, false, nil
		})
		assert.ErrorIs(t, err, ioErr)
	})

	t.Run("ошибка чтения premium трактуется как false", func(t *testing.T) {
		kv := new(KVMock)
		kv.On("Get", mock.Anything, KeyPremium).Return("", ioErr)

		s := newStore(kv)
		assert.False(t, s.IsPremium(ctx))
		assert.False(t, s.LoadPremiumStatus(ctx).IsPremium)
	})
}

func TestStore_ApplyVerdict(t *testing.T) {
	ctx := context.Background()
	s := newStore(kvstore.NewMemory())
	tx := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.ApplyVerdict(ctx, billing.Verdict{Active: true, SubscriptionType: models.SubscriptionYearly, TransactionDate: tx}))
	state, err := s.Premium(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsVerified())
	assert.Equal(t, models.PremiumStatus{IsPremium: true, SubscriptionType: models.SubscriptionYearly, TransactionDate: tx}, state.Status())

	require.NoError(t, s.ApplyVerdict(ctx, billing.Verdict{}))
	assert.False(t, s.IsPremium(ctx))
}

// hookKV вызывает onGet перед каждым чтением.
type hookKV struct {
	*kvstore.Memory
	onGet func(key string)
}

func (h *hookKV) Get(ctx context.Context, key string) (string, error) {
	h.onGet(key)
	return h.Memory.Get(ctx, key)
}

func TestStore_SetPremiumIsAtomic(t *testing.T) {
	ctx := context.Background()
	verdict := billing.Verdict{Active: true, SubscriptionType: models.SubscriptionYearly}

	for range 50 {
		var (
			wg   sync.WaitGroup
			once sync.Once
			s    *Store
		)
		kv := &hookKV{Memory: kvstore.NewMemory()}
		kv.onGet = func(key string) {
			if key != KeyPremium {
				return
			}
			// Вердикт приходит, пока SetPremium читает текущий статус.
			once.Do(func() {
				wg.Add(1)
				go func() {
					defer wg.Done()
					assert.NoError(t, s.ApplyVerdict(ctx, verdict))
				}()
				time.Sleep(time.Millisecond)
			})
		}
		s = newStore(kv)

		require.NoError(t, s.SetPremium(ctx, true))
		wg.Wait()

		status := s.LoadPremiumStatus(ctx)
		assert.True(t, status.IsPremium)
		assert.Equal(t, models.SubscriptionYearly, status.SubscriptionType)
	}
}
