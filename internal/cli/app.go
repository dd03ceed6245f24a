// Package cli реализует команды клиентского приложения PhytoCheck.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/magabrotheeeer/phytocheck/internal/catalog"
	"github.com/magabrotheeeer/phytocheck/internal/config"
	"github.com/magabrotheeeer/phytocheck/internal/deviceclient"
	"github.com/magabrotheeeer/phytocheck/internal/kvstore"
	"github.com/magabrotheeeer/phytocheck/internal/lib/deviceid"
	"github.com/magabrotheeeer/phytocheck/internal/services/billing"
	"github.com/magabrotheeeer/phytocheck/internal/services/entitlement"
	"github.com/magabrotheeeer/phytocheck/internal/services/quota"
	"github.com/magabrotheeeer/phytocheck/internal/services/stock"
)

// App связывает справочник, локальное хранилище и сервисы клиента.
type App struct {
	Catalog  *catalog.Catalog
	Store    *entitlement.Store
	Stock    *stock.Manager
	Quota    *quota.Reconciler
	Platform billing.Platform
	DeviceID string
	Log      *slog.Logger

	closer io.Closer
}

// Open загружает справочник, открывает хранилище в DataDir и сверяет
// счётчик поисков с сервером, если он настроен.
func Open(ctx context.Context, cfg *config.Client, log *slog.Logger) (*App, error) {
	const op = "cli.Open"

	var (
		cat *catalog.Catalog
		err error
	)
	if cfg.External() {
		cat, err = catalog.LoadFiles(ctx, cfg.ProductsPath, cfg.RiskPhrasesPath, cfg.Dataset.UpdatedAt)
	} else {
		cat, err = catalog.LoadBundled()
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	kv, err := kvstore.OpenSQLite(ctx, cfg.StorePath())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Идентификатор устройства есть только на мобильных платформах, в вебе
	// квота считается локально.
	platform := billing.ParsePlatform(cfg.Platform)
	var (
		id     string
		remote quota.DeviceCounter
	)
	if billing.IsPlatformSupported(platform) {
		id = deviceid.Resolve(cfg.DeviceID, cfg.DataDir)
	}
	if cfg.Tracker.URL != "" && id != "" {
		remote = deviceclient.New(cfg.Tracker.URL, cfg.Tracker.Timeout)
	}

	app := NewApp(cat, kv, remote, id, platform, log,
		quota.WithTimeout(cfg.Tracker.Timeout))
	app.closer = kv
	app.Quota.Sync(ctx)
	return app, nil
}

// NewApp собирает сервисы поверх готового справочника и хранилища.
// remote может быть nil, тогда квота считается только локально.
func NewApp(cat *catalog.Catalog, kv kvstore.Store, remote quota.DeviceCounter, deviceID string, platform billing.Platform, log *slog.Logger, opts ...quota.Option) *App {
	store := entitlement.New(kv, log)
	return &App{
		Catalog:  cat,
		Store:    store,
		Stock:    stock.New(store, log),
		Quota:    quota.New(store, remote, deviceID, log, opts...),
		Platform: platform,
		DeviceID: deviceID,
		Log:      log,
	}
}

// Close закрывает локальное хранилище.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
