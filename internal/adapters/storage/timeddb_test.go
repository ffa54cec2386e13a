package storage

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"techfest/internal/adapters/http/perf"
)

func openTimedTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestTimedDB_RecordsLabelledStatements(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, time.Second)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	got := map[string]bool{}
	for _, s := range snap.SlowestQueries {
		got[s.Path] = true
	}
	if !got["INSERT test"] || !got["SELECT test"] {
		t.Errorf("unexpected labels: %+v", snap.SlowestQueries)
	}
}

func TestTimedDB_ErrorPassthrough(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)

	if _, err := tdb.ExecContext(context.Background(), "INSERT INTO nonexistent_table VALUES (?)", 1); err == nil {
		t.Fatal("expected error from invalid SQL")
	}
	if _, err := tdb.QueryContext(context.Background(), "SELECT * FROM nonexistent_table"); err == nil {
		t.Fatal("expected error from invalid SQL")
	}
	if collector.TotalRecorded() != 2 {
		t.Errorf("TotalRecorded = %d, want 2 (errors are still timed)", collector.TotalRecorded())
	}
}

func TestTimedDB_NoRowsPassthrough(t *testing.T) {
	db := openTimedTestDB(t)
	tdb := NewTimedDB(db, nil, 0)

	var val string
	err := tdb.QueryRowContext(context.Background(), "SELECT val FROM test WHERE id = ?", "missing").Scan(&val)
	if err != sql.ErrNoRows {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestTimedDB_Transaction(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(100)
	tdb := NewTimedDB(db, collector, 0)

	tx, err := tdb.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := tx.Exec("INSERT INTO test (id, val) VALUES (?, ?)", "1", "x"); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if collector.TotalRecorded() != 1 {
		t.Errorf("TotalRecorded = %d, want 1", collector.TotalRecorded())
	}
	if tdb.RawDB() != db {
		t.Error("RawDB() should return the wrapped *sql.DB")
	}
}

func TestTimedDB_Concurrent(t *testing.T) {
	db := openTimedTestDB(t)
	collector := perf.NewCollector(1000)
	tdb := NewTimedDB(db, collector, 0)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var n int
			_ = tdb.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM test").Scan(&n)
		}()
	}
	wg.Wait()
	if collector.TotalRecorded() != 10 {
		t.Errorf("TotalRecorded = %d, want 10", collector.TotalRecorded())
	}
}

func TestStatementLabel(t *testing.T) {
	tests := map[string]string{
		"SELECT id FROM registrations WHERE user_id = ?": "SELECT registrations",
		"insert into outbox(id) values (?)":              "INSERT outbox",
		"UPDATE account SET role = ?":                    "UPDATE account",
		"DELETE FROM outbox WHERE id = ?":                "DELETE outbox",
		"PRAGMA journal_mode=WAL":                        "PRAGMA",
		"BEGIN":                                          "BEGIN",
		"   ":                                            "EMPTY",
	}
	for query, want := range tests {
		if got := statementLabel(query); got != want {
			t.Errorf("statementLabel(%q) = %q, want %q", query, got, want)
		}
	}
}
