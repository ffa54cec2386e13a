package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"techfest/internal/adapters/http/middleware"
	"techfest/internal/adapters/http/perf"
	accountStore "techfest/internal/adapters/storage/account"
	auditStore "techfest/internal/adapters/storage/audit"
	eventInfoStore "techfest/internal/adapters/storage/eventinfo"
	outboxStore "techfest/internal/adapters/storage/outbox"
	registrationStore "techfest/internal/adapters/storage/registration"
	"techfest/internal/application/orchestrators"
	"techfest/internal/domain/wizard"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore      accountStore.Store
	RegistrationStore registrationStore.Store
	EventInfoStore    eventInfoStore.Store
	OutboxStore       outboxStore.Store // optional
	AuditStore        auditStore.Store  // optional
}

// Options configures NewMux.
type Options struct {
	// Submitter files finished registrations. Required.
	Submitter wizard.Submitter
	// Verifier accepts hosted identity-provider bearer tokens. Optional.
	Verifier middleware.TokenVerifier
	// Processor backs the admin outbox endpoints. Optional.
	Processor *orchestrators.OutboxProcessor
	// Collector receives request timings. Optional.
	Collector *perf.Collector

	CSRFKey        []byte // 32 bytes
	SecureCookies  bool
	TrustedOrigins []string
	CORSOrigins    []string
	SubmitTimeout  time.Duration
	SlowRequest    time.Duration
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global wizard sessions, one per signed-in account (set by NewMux)
var wizards *wizard.Sessions

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global outbox processor (set by NewMux)
var outboxProcessor *orchestrators.OutboxProcessor

var (
	secureCookies bool
	submitTimeout time.Duration
)

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// DefaultSubmitTimeout bounds a single submission when none is configured.
const DefaultSubmitTimeout = 15 * time.Second

var limiter *middleware.RateLimiter

// NewMux wires HTTP handlers for the hosted API.
// PRE: s and opts.Submitter are non-nil; opts.CSRFKey is 32 bytes
func NewMux(s *Stores, opts Options) http.Handler {
	stores = s
	perfCollector = opts.Collector
	outboxProcessor = opts.Processor
	sessions = middleware.NewSessionStore()
	wizards = wizard.NewSessions(opts.Submitter)
	secureCookies = opts.SecureCookies
	submitTimeout = opts.SubmitTimeout
	if submitTimeout <= 0 {
		submitTimeout = DefaultSubmitTimeout
	}

	mux := http.NewServeMux()
	registerRoutes(mux)

	limiter = middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Request order: CORS -> Timing -> RateLimit -> Auth -> CSRF -> SecurityHeaders -> mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, opts.SecureCookies, opts.TrustedOrigins),
		middleware.Auth(sessions, opts.Verifier),
		middleware.RateLimit(limiter),
		middleware.Timing(opts.Collector, opts.SlowRequest),
		middleware.CORS(opts.CORSOrigins),
	)
}

// StartSweeper periodically drops idle wizard sessions and rate-limit
// buckets until ctx is cancelled.
func StartSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				pruned := wizards.Prune(maxIdle)
				swept := limiter.Sweep(5 * time.Minute)
				if pruned > 0 || swept > 0 {
					slog.Debug("sweep", "wizard_sessions", pruned, "rate_limit_buckets", swept)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
