package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"techfest/internal/domain/account"
	"techfest/internal/domain/eventinfo"
)

// EventInfoStoreForSeed defines the store interface needed to seed event info.
type EventInfoStoreForSeed interface {
	Get(ctx context.Context) (eventinfo.Info, error)
	Put(ctx context.Context, info eventinfo.Info) error
}

// ExecuteSeedEventInfo stores info when no event info exists yet.
// PRE: info is valid
// POST: event info exists; existing info is never overwritten
func ExecuteSeedEventInfo(ctx context.Context, store EventInfoStoreForSeed, info eventinfo.Info) error {
	_, err := store.Get(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, eventinfo.ErrNotFound) {
		return fmt.Errorf("load event info: %w", err)
	}
	if err := info.Validate(); err != nil {
		return fmt.Errorf("seed event info: %w", err)
	}
	if err := store.Put(ctx, info); err != nil {
		return fmt.Errorf("seed event info: %w", err)
	}
	slog.Info("seed_event_info", "name", info.Name)
	return nil
}

// ExecuteSeedAdmin creates the admin account from configuration when it
// does not exist yet. An empty email or password disables seeding.
// POST: admin account exists, or nothing changed
func ExecuteSeedAdmin(ctx context.Context, email, password string, deps CreateAccountDeps) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:    email,
		Password: password,
		Role:     account.RoleAdmin,
	}, deps)
	if errors.Is(err, ErrEmailAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin account: %w", err)
	}
	return nil
}
