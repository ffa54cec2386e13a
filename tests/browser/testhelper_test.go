package browser_test

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"techfest/internal/adapters/email"
	web "techfest/internal/adapters/http"
	"techfest/internal/adapters/http/fallback"
	"techfest/internal/adapters/storage"
	accountStore "techfest/internal/adapters/storage/account"
	auditStore "techfest/internal/adapters/storage/audit"
	eventInfoStore "techfest/internal/adapters/storage/eventinfo"
	"techfest/internal/adapters/storage/jsonfile"
	outboxStore "techfest/internal/adapters/storage/outbox"
	registrationStore "techfest/internal/adapters/storage/registration"
	"techfest/internal/application/orchestrators"
	"techfest/internal/domain/account"
	"techfest/internal/domain/eventinfo"
	"techfest/internal/domain/outbox"
)

const (
	adminEmail    = "admin@test.com"
	adminPassword = "TestPass123!"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	PW      *playwright.Playwright
	Stores  *web.Stores
}

// startPlaywright runs the Playwright driver, skipping the test when it is
// not installed.
func startPlaywright(t *testing.T) *playwright.Playwright {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright not available: %v", err)
	}
	t.Cleanup(func() { pw.Stop() })
	return pw
}

// serve starts h on a free local port and waits until it answers.
func serve(t *testing.T, h http.Handler, probe string) string {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	srv := &http.Server{Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("test server error: %v", err)
		}
	}()
	t.Cleanup(func() { srv.Close() })

	baseURL := fmt.Sprintf("http://%s", listener.Addr().String())
	for range 50 {
		resp, err := http.Get(baseURL + probe)
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	return baseURL
}

// newTestApp creates the hosted API over a temp SQLite DB with a seeded
// admin account and the default event info.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	pw := startPlaywright(t)

	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	timed := storage.NewTimedDB(db, nil, 0)

	regs := registrationStore.NewSQLiteStore(timed)
	info := eventInfoStore.NewSQLiteStore(timed)
	ob := outboxStore.NewSQLiteStore(timed)
	stores := &web.Stores{
		AccountStore:      accountStore.NewSQLiteStore(timed),
		RegistrationStore: regs,
		EventInfoStore:    info,
		OutboxStore:       ob,
		AuditStore:        auditStore.NewSQLiteStore(timed),
	}

	ctx := context.Background()
	if err := orchestrators.ExecuteSeedEventInfo(ctx, info, eventinfo.Default()); err != nil {
		t.Fatalf("failed to seed event info: %v", err)
	}
	if _, err := orchestrators.ExecuteCreateAccount(ctx, orchestrators.CreateAccountInput{
		Email:    adminEmail,
		Password: adminPassword,
		Role:     account.RoleAdmin,
	}, orchestrators.CreateAccountDeps{AccountStore: stores.AccountStore, Now: time.Now, GenerateID: uuid.NewString}); err != nil {
		t.Fatalf("failed to create admin: %v", err)
	}

	submitter := &orchestrators.RegistrationSubmitter{
		Store:      regs,
		Outbox:     ob,
		Backend:    "sqlite",
		Now:        time.Now,
		GenerateID: uuid.NewString,
	}
	processor := orchestrators.NewOutboxProcessor(ob, map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeConfirmationEmail: &orchestrators.ConfirmationExecutor{
			Registrations: regs,
			EventInfo:     info,
			Sender:        email.NewNoopSender(),
		},
	})

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	web.RateLimitPerSecond = 1000
	h := web.NewMux(stores, web.Options{
		Submitter:     submitter,
		Processor:     processor,
		CSRFKey:       key,
		SubmitTimeout: 5 * time.Second,
	})

	return &testApp{BaseURL: serve(t, h, "/healthz"), PW: pw, Stores: stores}
}

// newFallbackApp serves the file-backed API from a seeded temp document.
func newFallbackApp(t *testing.T) (*playwright.Playwright, string, *jsonfile.Store) {
	t.Helper()
	pw := startPlaywright(t)
	store := jsonfile.New(filepath.Join(t.TempDir(), "db.json"))
	if err := store.Seed(eventinfo.Default()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return pw, serve(t, fallback.NewHandler(store), "/eventInfo"), store
}

// apiContext creates a request context whose cookies persist across calls,
// like a single browser session.
func (a *testApp) apiContext(t *testing.T) playwright.APIRequestContext {
	t.Helper()
	return newAPIContext(t, a.PW, a.BaseURL)
}

func newAPIContext(t *testing.T, pw *playwright.Playwright, baseURL string) playwright.APIRequestContext {
	t.Helper()
	req, err := pw.Request.NewContext(playwright.APIRequestNewContextOptions{
		BaseURL: playwright.String(baseURL),
		ExtraHttpHeaders: map[string]string{
			"Content-Type": "application/json",
		},
	})
	if err != nil {
		t.Fatalf("failed to create request context: %v", err)
	}
	t.Cleanup(func() { req.Dispose() })
	return req
}

func post(t *testing.T, req playwright.APIRequestContext, path string, data any) playwright.APIResponse {
	t.Helper()
	resp, err := req.Post(path, playwright.APIRequestContextPostOptions{Data: data})
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func put(t *testing.T, req playwright.APIRequestContext, path string, data any) playwright.APIResponse {
	t.Helper()
	resp, err := req.Put(path, playwright.APIRequestContextPutOptions{Data: data})
	if err != nil {
		t.Fatalf("PUT %s: %v", path, err)
	}
	return resp
}

func get(t *testing.T, req playwright.APIRequestContext, path string) playwright.APIResponse {
	t.Helper()
	resp, err := req.Get(path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func expectStatus(t *testing.T, resp playwright.APIResponse, want int) {
	t.Helper()
	if resp.Status() != want {
		body, _ := resp.Text()
		t.Fatalf("%s: status = %d, want %d: %s", resp.URL(), resp.Status(), want, body)
	}
}

func decode[T any](t *testing.T, resp playwright.APIResponse) T {
	t.Helper()
	var v T
	if err := resp.JSON(&v); err != nil {
		t.Fatalf("decode %s: %v", resp.URL(), err)
	}
	return v
}
