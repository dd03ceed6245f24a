// Package stock управляет складом пользователя: уникальные позиции,
// лимит бесплатной версии и сводная статистика.
package stock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/phytocheck/internal/lib/sl"
	"github.com/magabrotheeeer/phytocheck/internal/models"
	"github.com/magabrotheeeer/phytocheck/internal/services/entitlement"
)

// FreeStockLimit - максимальное число различных препаратов на складе без Premium.
const FreeStockLimit = 20

// Unlimited возвращается Limit для Premium.
const Unlimited = -1

// Result - итог добавления на склад.
type Result string

const (
	ResultAdded         Result = "added"
	ResultIncremented   Result = "incremented"
	ResultLimitExceeded Result = "limitExceeded"
	ResultError         Result = "error"
)

var errLimitExceeded = errors.New("stock limit exceeded")

// Manager - операции над складом поверх entitlement.Store.
type Manager struct {
	store *entitlement.Store
	log   *slog.Logger
	now   func() time.Time
}

// New создаёт Manager.
func New(store *entitlement.Store, log *slog.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// AddToStock добавляет препарат на склад. Если препарат уже есть, количество
// прибавляется к существующей позиции без проверки лимита. Новый препарат
// без Premium добавляется только пока на складе меньше FreeStockLimit позиций.
// Неположительное количество считается равным 1.
func (m *Manager) AddToStock(ctx context.Context, product models.ClassifiedProduct, quantity float64, unit models.Unit, secondaryName string) Result {
	const op = "stock.AddToStock"
	log := m.log.With(slog.String("op", op), slog.String("product_id", product.ID))

	if quantity <= 0 {
		quantity = 1
	}
	unit = models.ParseUnit(string(unit))

	result := ResultAdded
	err := m.store.UpdateStock(ctx, func(items []models.StockItem, premium bool) ([]models.StockItem, bool, error) {
		for i := range items {
			if items[i].ProductID() == product.ID {
				items[i].Quantity += quantity
				result = ResultIncremented
				return items, true, nil
			}
		}
		if !premium && len(items) >= FreeStockLimit {
			return nil, false, errLimitExceeded
		}
		return append(items, models.StockItem{
			Product:       models.NewSnapshot(product),
			SecondaryName: secondaryName,
			AddedAt:       m.now().UTC(),
			Quantity:      quantity,
			Unit:          unit,
		}), true, nil
	})
	switch {
	case errors.Is(err, errLimitExceeded):
		log.Info("stock limit reached", slog.Int("limit", FreeStockLimit))
		return ResultLimitExceeded
	case err != nil:
		log.Error("failed to add to stock", sl.Err(err))
		return ResultError
	}

	log.Debug("stock updated", slog.String("result", string(result)))
	return result
}

// UpdateQuantity задаёт количество позиции. Отрицательное значение приводится
// к нулю, нулевое удаляет позицию. Возвращает false, если позиции нет или
// запись не удалась.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity float64) bool {
	const op = "stock.UpdateQuantity"

	quantity = max(quantity, 0)
	found := false
	err := m.store.UpdateStock(ctx, func(items []models.StockItem, _ bool) ([]models.StockItem, bool, error) {
		for i := range items {
			if items[i].ProductID() != productID {
				continue
			}
			found = true
			if quantity == 0 {
				return append(items[:i], items[i+1:]...), true, nil
			}
			items[i].Quantity = quantity
			return items, true, nil
		}
		return items, false, nil
	})
	if err != nil {
		m.log.Error("failed to update quantity", slog.String("op", op), slog.String("product_id", productID), sl.Err(err))
		return false
	}
	return found
}

// RemoveFromStock удаляет позицию. Удаление отсутствующей позиции успешно.
func (m *Manager) RemoveFromStock(ctx context.Context, productID string) bool {
	const op = "stock.RemoveFromStock"

	err := m.store.UpdateStock(ctx, func(items []models.StockItem, _ bool) ([]models.StockItem, bool, error) {
		kept := make([]models.StockItem, 0, len(items))
		for _, it := range items {
			if it.ProductID() != productID {
				kept = append(kept, it)
			}
		}
		return kept, len(kept) != len(items), nil
	})
	if err != nil {
		m.log.Error("failed to remove from stock", slog.String("op", op), slog.String("product_id", productID), sl.Err(err))
		return false
	}
	return true
}

// Stock возвращает позиции склада в порядке добавления. При ошибке
// чтения возвращается пустой склад.
func (m *Manager) Stock(ctx context.Context) []models.StockItem {
	items, err := m.store.Stock(ctx)
	if err != nil {
		m.log.Error("failed to read stock", slog.String("op", "stock.Stock"), sl.Err(err))
		return []models.StockItem{}
	}
	return items
}

// IsInStock сообщает, есть ли препарат на складе.
func (m *Manager) IsInStock(ctx context.Context, productID string) bool {
	for _, it := range m.Stock(ctx) {
		if it.ProductID() == productID {
			return true
		}
	}
	return false
}

// StockStats считает позиции по классификации, сохранённой в снимке.
func (m *Manager) StockStats(ctx context.Context) models.StockStats {
	items := m.Stock(ctx)
	stats := models.StockStats{Total: len(items)}
	for _, it := range items {
		switch it.Product.Classification() {
		case models.ClassHomologated:
			stats.Homologated++
		case models.ClassWithdrawn:
			stats.Withdrawn++
		case models.ClassHomologatedCMR:
			stats.CMR++
		case models.ClassHomologatedToxic:
			stats.Toxic++
		}
	}
	return stats
}

// Limit возвращает лимит позиций: FreeStockLimit или Unlimited для Premium.
func (m *Manager) Limit(ctx context.Context) int {
	if m.store.IsPremium(ctx) {
		return Unlimited
	}
	return FreeStockLimit
}
