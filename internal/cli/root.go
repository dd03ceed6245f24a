package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/phytocheck/internal/config"
)

// Opener создаёт App для команды.
type Opener func(ctx context.Context, configPath string) (*App, error)

type session struct {
	open Opener
	app  *App
}

// NewRootCommand возвращает корневую команду phytocheck.
func NewRootCommand() *cobra.Command {
	return NewRootCommandWith(openFromConfig)
}

// NewRootCommandWith возвращает корневую команду с заданным способом
// создания App.
func NewRootCommandWith(open Opener) *cobra.Command {
	s := &session{open: open}
	var configPath string

	cmd := &cobra.Command{
		Use:           "phytocheck",
		Short:         "Check French pesticide product authorizations and manage your stock",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := s.open(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			s.app = app
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if s.app == nil {
				return nil
			}
			return s.app.Close()
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("PHYTOCHECK_CONFIG"), "Path to the client config file")

	cmd.AddCommand(
		newSearchCommand(s),
		newProductCommand(s),
		newStockCommand(s),
		newPremiumCommand(s),
		newBillingCommand(s),
		newStatusCommand(s),
		newSyncCommand(s),
		newResetCommand(s),
	)
	return cmd
}

func openFromConfig(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadClient(configPath)
	if err != nil {
		return nil, err
	}
	return Open(ctx, cfg, setupLogger(cfg.Env))
}

func setupLogger(env string) *slog.Logger {
	level := slog.LevelWarn
	if env == "local" || env == "dev" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
