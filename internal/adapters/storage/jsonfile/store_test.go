package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"techfest/internal/domain/eventinfo"
	"techfest/internal/domain/registration"
	"techfest/internal/domain/wizard"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "db.json"))
	s.now = func() time.Time { return time.Date(2025, 2, 3, 4, 5, 6, 789000000, time.UTC) }
	n := 0
	s.newID = func() string {
		n++
		return "id-" + string(rune('0'+n))
	}
	return s
}

func TestLoadMissingFile(t *testing.T) {
	s := newTestStore(t)
	doc := s.Load()
	if doc.EventInfo == nil || doc.Registrations == nil || len(doc.Registrations) != 0 {
		t.Errorf("expected empty document, got %+v", doc)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	s := newTestStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := s.Load()
	if len(doc.EventInfo) != 0 || len(doc.Registrations) != 0 {
		t.Errorf("expected empty default document, got %+v", doc)
	}
}

func TestAppendStampsAndPersists(t *testing.T) {
	s := newTestStore(t)

	entry, err := s.Append([]byte(`{"firstName":"Ann","phone":"1234567890","agreeToTerms":true,"age":21}`))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if entry["id"] != "id-1" {
		t.Errorf("id = %v", entry["id"])
	}
	if entry["createdAt"] != "2025-02-03T04:05:06.789Z" {
		t.Errorf("createdAt = %v", entry["createdAt"])
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"eventInfo\"") {
		t.Errorf("document should be indented with two spaces:\n%s", data)
	}
	if !strings.Contains(string(data), `"age": 21`) {
		t.Errorf("numbers should round-trip unchanged:\n%s", data)
	}

	regs := s.Registrations()
	if len(regs) != 1 || regs[0]["firstName"] != "Ann" || regs[0]["agreeToTerms"] != true {
		t.Errorf("unexpected registrations: %+v", regs)
	}
}

func TestAppendOverridesClientID(t *testing.T) {
	s := newTestStore(t)
	entry, err := s.Append([]byte(`{"id":"mine","createdAt":"yesterday"}`))
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if entry["id"] != "id-1" || entry["createdAt"] == "yesterday" {
		t.Errorf("server fields should win: %+v", entry)
	}
}

func TestAppendRejectsInvalidBody(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Append([]byte(`{"firstName":"Ann"}`)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	before, _ := os.ReadFile(s.Path())

	for _, body := range []string{"not json", "", `[1,2]`, `"text"`, `{"a":1} trailing`} {
		if _, err := s.Append([]byte(body)); err == nil {
			t.Errorf("Append(%q) should fail", body)
		}
	}

	after, _ := os.ReadFile(s.Path())
	if string(before) != string(after) {
		t.Error("invalid bodies must not modify the document")
	}
}

func TestSeed(t *testing.T) {
	s := newTestStore(t)
	if err := s.Seed(eventinfo.Default()); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if got := s.EventInfo()["name"]; got != "TechFest 2025" {
		t.Errorf("eventInfo.name = %v", got)
	}

	if _, err := s.Append([]byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.Seed(eventinfo.Info{Name: "Other"}); err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if got := s.EventInfo()["name"]; got != "TechFest 2025" {
		t.Errorf("Seed must not overwrite an existing document, name = %v", got)
	}
	if len(s.Registrations()) != 1 {
		t.Error("Seed must keep existing registrations")
	}
}

func TestSubmitImplementsSubmitter(t *testing.T) {
	s := newTestStore(t)
	var _ wizard.Submitter = s

	note := "  "
	rec := registration.Record{FirstName: " Ann ", Email: "ann@example.com", SpecialRequirements: &note, AgreeToTerms: true}
	stored, err := s.Submit(context.Background(), wizard.Identity{UserID: "local:ann"}, rec)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if stored.ID != "id-1" || stored.UserID != "local:ann" || stored.FirstName != "Ann" {
		t.Errorf("unexpected stored: %+v", stored)
	}
	if stored.CreatedAt.IsZero() {
		t.Error("createdAt not parsed")
	}

	raw, _ := os.ReadFile(s.Path())
	var doc struct {
		Registrations []map[string]any `json:"registrations"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Registrations[0]["specialRequirements"] != nil {
		t.Errorf("blank special requirements should be null, got %v", doc.Registrations[0]["specialRequirements"])
	}
}

func TestSubmitCancelledContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Submit(ctx, wizard.Identity{UserID: "u"}, registration.Record{}); err == nil {
		t.Fatal("expected error for cancelled context")
	}
	if len(s.Registrations()) != 0 {
		t.Error("cancelled submit must not store anything")
	}
}
