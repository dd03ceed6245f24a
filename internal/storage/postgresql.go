// Package storage реализует хранилище счётчиков поисков устройств на основе
// PostgreSQL.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/phytocheck/internal/models"
)

// ErrDeviceNotFound возвращается, если устройство не зарегистрировано.
var ErrDeviceNotFound = errors.New("device not found")

var openDB = sql.Open

// Storage инкапсулирует соединение с базой данных PostgreSQL.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := openDB("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables 
        WHERE table_name = 'devices'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table devices missing or query error: %w", err)
	}
	return nil
}

// Ping проверяет соединение с базой.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// ===== DEVICE METHODS =====

// SyncDevice создаёт устройство со счётчиком 0 или обновляет флаг Premium и
// время последнего обращения. Сообщает, изменился ли флаг Premium.
func (s *Storage) SyncDevice(ctx context.Context, deviceID string, isPremium bool) (models.DeviceSync, error) {
	const op = "storage.SyncDevice"
	select {
	case <-ctx.Done():
		return models.DeviceSync{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `WITH prev AS (
				SELECT is_premium FROM devices WHERE device_id = $1
			  )
			  INSERT INTO devices (device_id, is_premium)
			  VALUES ($1, $2)
			  ON CONFLICT (device_id) DO UPDATE
			  SET is_premium = EXCLUDED.is_premium, last_seen = NOW()
			  RETURNING device_id, search_count, is_premium, first_seen, last_seen,
				(SELECT is_premium FROM prev)`

	var (
		d    models.Device
		prev sql.NullBool
	)
	err := s.DB.QueryRowContext(ctx, query, deviceID, isPremium).
		Scan(&d.DeviceID, &d.SearchCount, &d.IsPremium, &d.FirstSeen, &d.LastSeen, &prev)
	if err != nil {
		return models.DeviceSync{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.DeviceSync{
		Device:         d,
		PremiumChanged: prev.Valid && prev.Bool != d.IsPremium,
	}, nil
}

// IncrementSearch учитывает поиск устройства. Неизвестное устройство
// создаётся. Устройство с флагом Premium или со счётчиком меньше limit
// получает разрешение и увеличенный счётчик, иначе счётчик не меняется.
// Чтение и обновление выполняются в одной транзакции с блокировкой строки.
func (s *Storage) IncrementSearch(ctx context.Context, deviceID string, limit int) (models.DeviceIncrement, error) {
	const op = "storage.IncrementSearch"
	select {
	case <-ctx.Done():
		return models.DeviceIncrement{}, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.DeviceIncrement{}, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO devices (device_id) VALUES ($1) ON CONFLICT (device_id) DO NOTHING`, deviceID); err != nil {
		return models.DeviceIncrement{}, fmt.Errorf("%s: %w", op, err)
	}

	var (
		d         models.Device
		exhausted sql.NullTime
	)
	err = tx.QueryRowContext(ctx,
		`SELECT device_id, search_count, is_premium, first_seen, last_seen, quota_exhausted_at
		 FROM devices WHERE device_id = $1 FOR UPDATE`, deviceID).
		Scan(&d.DeviceID, &d.SearchCount, &d.IsPremium, &d.FirstSeen, &d.LastSeen, &exhausted)
	if err != nil {
		return models.DeviceIncrement{}, fmt.Errorf("%s: %w", op, err)
	}

	var out models.DeviceIncrement
	if d.IsPremium || d.SearchCount < limit {
		err = tx.QueryRowContext(ctx,
			`UPDATE devices SET search_count = search_count + 1, last_seen = NOW()
			 WHERE device_id = $1
			 RETURNING search_count, last_seen`, deviceID).
			Scan(&d.SearchCount, &d.LastSeen)
		out.Allowed = true
	} else {
		err = tx.QueryRowContext(ctx,
			`UPDATE devices SET last_seen = NOW(), quota_exhausted_at = COALESCE(quota_exhausted_at, NOW())
			 WHERE device_id = $1
			 RETURNING last_seen`, deviceID).
			Scan(&d.LastSeen)
		out.FirstDenial = !exhausted.Valid
	}
	if err != nil {
		return models.DeviceIncrement{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return models.DeviceIncrement{}, fmt.Errorf("%s: %w", op, err)
	}
	out.Device = d
	return out, nil
}

// GetDevice возвращает устройство по идентификатору.
func (s *Storage) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	const op = "storage.GetDevice"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT device_id, search_count, is_premium, first_seen, last_seen
			  FROM devices WHERE device_id = $1`
	var d models.Device
	err := s.DB.QueryRowContext(ctx, query, deviceID).
		Scan(&d.DeviceID, &d.SearchCount, &d.IsPremium, &d.FirstSeen, &d.LastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrDeviceNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &d, nil
}

// Close закрывает соединение с базой.
func (s *Storage) Close() error {
	return s.DB.Close()
}
