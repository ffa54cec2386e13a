package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"techfest/internal/adapters/http/fallback"
	"techfest/internal/adapters/storage/jsonfile"
	"techfest/internal/domain/eventinfo"
)

var fallbackFlags struct {
	addr string
	db   string
}

var fallbackCmd = &cobra.Command{
	Use:   "fallback",
	Short: "Run the file-backed development API",
	Long: `Serve GET /eventInfo, GET /registrations and POST /registrations from a
single JSON document. The document is created with the default event info
when it does not exist.`,
	RunE: runFallback,
}

func init() {
	fallbackCmd.Flags().StringVar(&fallbackFlags.addr, "addr", "", "Listen address (default fallback_addr)")
	fallbackCmd.Flags().StringVar(&fallbackFlags.db, "db", "", "JSON document path (default fallback_db_path)")
}

func runFallback(cmd *cobra.Command, args []string) error {
	addr := firstNonEmpty(fallbackFlags.addr, cfg.FallbackAddr)
	store := jsonfile.New(firstNonEmpty(fallbackFlags.db, cfg.FallbackDBPath))
	if err := store.Seed(eventinfo.Default()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           fallback.NewHandler(store),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("fallback_starting", "addr", addr, "db", store.Path())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("fallback server failed: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
