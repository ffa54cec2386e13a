package storage

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	db.SetMaxOpenConns(1)
	defer db.Close()

	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB should be idempotent: %v", err)
	}

	for _, table := range []string{"account", "registrations", "event_info", "outbox", "audit_event"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}
