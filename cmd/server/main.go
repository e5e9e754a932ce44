package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"column-tracker/internal/config"
	"column-tracker/internal/database"
	"column-tracker/internal/inventory"
	"column-tracker/internal/logging"
	"column-tracker/internal/metrics"
	"column-tracker/internal/report"
	"column-tracker/internal/search"
	"column-tracker/internal/server"
	"column-tracker/internal/session"
	"column-tracker/internal/storage"
	"column-tracker/internal/usage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	root := &cobra.Command{
		Use:           "server",
		Short:         "Chromatography column inventory and usage tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(&cobra.Command{
		Use:   "reset-columns",
		Short: "Delete all columns with their usage history and restart numbering (development only)",
		Args:  cobra.NoArgs,
		RunE:  runResetColumns,
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// bootstrap собирает общее для обеих команд: конфиг, логгер, базу.
func bootstrap(ctx context.Context) (*config.Config, *zap.Logger, *database.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.Open(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, log, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer log.Sync()
	defer db.Close()

	gin.SetMode(cfg.GinMode)
	metrics.Register(prometheus.DefaultRegisterer)

	gate := session.NewGate(db.DB, log)
	if err := gate.EnsureDefaultAdmin(ctx, cfg.AdminEmployeeID, cfg.AdminName); err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg)
	if err != nil {
		return err
	}
	reports := report.NewGenerator(
		report.RendererFor(cfg.Report.WkhtmltopdfPath, cfg.Report.FontPath),
		store,
		cfg.Report.LogoPath,
		log.Named("report"),
	)

	r, err := server.NewRouter(cfg, server.Services{
		Gate:    gate,
		Columns: inventory.NewService(db.DB, log.Named("inventory")),
		Usage:   usage.NewService(db.DB, reports, log.Named("usage")),
		Search:  search.NewService(db.DB, log.Named("search")),
	}, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runResetColumns(cmd *cobra.Command, _ []string) error {
	_, log, db, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer log.Sync()
	defer db.Close()

	log.Warn("resetting column inventory: all columns and their usage history will be deleted")
	deleted, err := db.ResetColumns(cmd.Context())
	if err != nil {
		return err
	}

	log.Warn("column inventory reset", zap.Int64("columns_deleted", deleted))
	fmt.Printf("All column data has been reset (%d columns removed).\n", deleted)
	return nil
}
