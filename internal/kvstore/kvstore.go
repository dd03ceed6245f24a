// Package kvstore реализует локальное постоянное хранилище ключ-значение
// для данных установки: склада, счётчика поисков и статуса подписки.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound возвращается, когда ключ отсутствует.
var ErrNotFound = errors.New("key not found")

// Store описывает хранилище строковых значений по ключу.
type Store interface {
	// Get возвращает значение по ключу или ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set сохраняет значение по ключу, перезаписывая предыдущее.
	Set(ctx context.Context, key, value string) error
	// Delete удаляет ключ. Отсутствие ключа не считается ошибкой.
	Delete(ctx context.Context, key string) error
}
