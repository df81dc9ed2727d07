package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	appMigrations "github.com/yigit/offerdesk/internal/app/migrations"
	"github.com/yigit/offerdesk/internal/bootstrap"
	"github.com/yigit/offerdesk/internal/db"
	"github.com/yigit/offerdesk/internal/pkg/logger"
	"github.com/yigit/offerdesk/internal/server"
)

// @title Offerdesk API
// @version 1.0
// @description Offer letter issuance, delivery and public verification.

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logger.Error().Err(err).Msg("Command failed")
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "offerdesk",
		Short:         "Offer letter issuance and verification service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", filepath.Join("configs", "config.yaml"), "Path to the YAML config file")

	cmd.AddCommand(newServeCommand(&configPath))
	cmd.AddCommand(newRelayCommand(&configPath))
	cmd.AddCommand(newMigrateCommand(&configPath))
	cmd.AddCommand(newReconcileCommand(&configPath))
	return cmd
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the offer letter API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath, "api")
			if err != nil {
				return err
			}
			srv, err := server.NewAPIServer(cmd.Context(), cfg, lgr)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}

func newRelayCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "relay",
		Short: "Run the email relay that delivers offer letters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath, "relay")
			if err != nil {
				return err
			}
			srv, err := server.NewRelayServer(cfg, lgr)
			if err != nil {
				return err
			}
			return srv.Run(cmd.Context())
		},
	}
}

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply, roll back or inspect database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{string(appMigrations.Up), string(appMigrations.Down), string(appMigrations.Status)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := appMigrations.Up
			if len(args) == 1 {
				dir = appMigrations.Direction(args[0])
			}

			cfg, _, err := bootstrap.LoadConfigAndSetupLogger(*configPath, "migrate")
			if err != nil {
				return err
			}
			database, err := db.NewPostgresDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			return appMigrations.Run(cmd.Context(), database.Pool, dir)
		},
	}
}

func newReconcileCommand(configPath *string) *cobra.Command {
	var batch int

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Promote drafts whose document is already in storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger(*configPath, "reconcile")
			if err != nil {
				return err
			}
			if batch <= 0 {
				batch = cfg.Document.ReconcileBatch
			}

			database, err := bootstrap.SetupDatabase(cmd.Context(), cfg, lgr)
			if err != nil {
				return err
			}
			defer database.Close()

			reconciler, err := bootstrap.BuildReconciler(cmd.Context(), cfg, database, lgr)
			if err != nil {
				return err
			}

			res, err := reconciler.Run(cmd.Context(), batch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "scanned=%d promoted=%d failed=%d\n", res.Scanned, res.Promoted, res.Failed)
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 0, "Drafts read per page (defaults to document.reconcile_batch)")
	return cmd
}
