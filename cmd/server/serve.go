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

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	emailPkg "techfest/internal/adapters/email"
	"techfest/internal/adapters/firebase"
	web "techfest/internal/adapters/http"
	"techfest/internal/adapters/http/middleware"
	"techfest/internal/adapters/http/perf"
	"techfest/internal/adapters/storage"
	accountStore "techfest/internal/adapters/storage/account"
	auditStore "techfest/internal/adapters/storage/audit"
	eventInfoStore "techfest/internal/adapters/storage/eventinfo"
	outboxStore "techfest/internal/adapters/storage/outbox"
	registrationStore "techfest/internal/adapters/storage/registration"
	"techfest/internal/adapters/telegram"
	"techfest/internal/application/orchestrators"
	"techfest/internal/config"
	"techfest/internal/domain/eventinfo"
	"techfest/internal/domain/outbox"
	"techfest/internal/domain/wizard"
)

const (
	outboxInterval = time.Minute
	sweepInterval  = 5 * time.Minute
	wizardMaxIdle  = 2 * time.Hour
)

var serveFlags struct {
	addr    string
	backend string
	noBot   bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hosted registration API",
	Long: `Run the hosted JSON API: accounts, the registration wizard, event info,
registrations listing and the admin endpoints.

Registrations and event info live in SQLite (backend: sqlite) or Firestore
(backend: firestore). Accounts and the outbox always live in SQLite. When
telegram_token is set the Telegram bot runs in the same process.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlags.addr, "addr", "", "Listen address (overrides config)")
	serveCmd.Flags().StringVar(&serveFlags.backend, "backend", "", "Storage backend: sqlite or firestore (overrides config)")
	serveCmd.Flags().BoolVar(&serveFlags.noBot, "no-bot", false, "Do not start the Telegram bot")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveFlags.addr != "" {
		cfg.Addr = serveFlags.addr
	}
	if serveFlags.backend != "" {
		cfg.Backend = serveFlags.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database_ready", "path", cfg.DBPath)

	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, 0)

	accounts := accountStore.NewSQLiteStore(timedDB)
	ob := outboxStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore: accounts,
		OutboxStore:  ob,
		AuditStore:   auditStore.NewSQLiteStore(timedDB),
	}

	var verifier middleware.TokenVerifier
	switch cfg.Backend {
	case config.BackendFirestore:
		client, err := firebase.Open(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
		if err != nil {
			return err
		}
		defer client.Close()
		stores.RegistrationStore = firebase.NewRegistrationStore(client.Firestore)
		stores.EventInfoStore = firebase.NewEventInfoStore(client.Firestore)
		verifier = firebase.NewTokenVerifier(client.Auth)
	default:
		stores.RegistrationStore = registrationStore.NewSQLiteStore(timedDB)
		stores.EventInfoStore = eventInfoStore.NewSQLiteStore(timedDB)
	}

	if err := orchestrators.ExecuteSeedEventInfo(ctx, stores.EventInfoStore, eventinfo.Default()); err != nil {
		return err
	}
	seedDeps := orchestrators.CreateAccountDeps{AccountStore: accounts, Now: time.Now, GenerateID: uuid.NewString}
	if err := orchestrators.ExecuteSeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, seedDeps); err != nil {
		return err
	}

	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		slog.Info("email_sender_configured", "provider", "resend")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender_disabled", "reason", "resend_key not set")
		} else {
			slog.Info("email_sender_configured", "provider", "noop")
		}
	}

	submitter := &orchestrators.RegistrationSubmitter{
		Store:      stores.RegistrationStore,
		Outbox:     ob,
		Perf:       collector,
		Backend:    cfg.Backend,
		Now:        time.Now,
		GenerateID: uuid.NewString,
	}
	processor := orchestrators.NewOutboxProcessor(ob, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeConfirmationEmail: &orchestrators.ConfirmationExecutor{
			Registrations: stores.RegistrationStore,
			EventInfo:     stores.EventInfoStore,
			Sender:        sender,
		},
	})
	orchestrators.StartBackgroundWorker(ctx, processor, outboxInterval)

	csrfKey, err := cfg.CSRFKeyBytes()
	if err != nil {
		return err
	}
	handler := web.NewMux(stores, web.Options{
		Submitter:      submitter,
		Verifier:       verifier,
		Processor:      processor,
		Collector:      collector,
		CSRFKey:        csrfKey,
		SecureCookies:  cfg.SecureCookies,
		TrustedOrigins: cfg.TrustedOrigins,
		CORSOrigins:    cfg.CORSOrigins,
		SubmitTimeout:  cfg.SubmitTimeout,
		SlowRequest:    cfg.SlowRequest,
	})
	web.StartSweeper(ctx, sweepInterval, wizardMaxIdle)

	if cfg.TelegramToken != "" && !serveFlags.noBot {
		startTelegram(ctx, submitter)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server_shutdown_failed", "error", err)
		}
	}()

	slog.Info("server_starting", "version", version, "addr", cfg.Addr, "env", cfg.Env, "backend", cfg.Backend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	slog.Info("server_stopped")
	return nil
}

// startTelegram runs the bot with its own wizard sessions. Idle sessions and
// their chat state are pruned on the same schedule as the web sessions.
func startTelegram(ctx context.Context, submitter wizard.Submitter) {
	sessions := wizard.NewSessions(submitter)
	bot := telegram.New(sessions, cfg.SubmitTimeout)

	go func() {
		if err := telegram.Run(ctx, cfg.TelegramToken, bot); err != nil {
			slog.Error("telegram_bot_failed", "error", err)
		}
	}()
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				bot.Prune(wizardMaxIdle)
			case <-ctx.Done():
				return
			}
		}
	}()
}
