// Package jsonfile keeps event info and registrations in a single JSON
// document on disk. It backs the development fallback API and the terminal
// wizard; the whole document is rewritten on every accepted registration.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"techfest/internal/domain/eventinfo"
	"techfest/internal/domain/registration"
	"techfest/internal/domain/wizard"
)

// CreatedAtLayout matches JavaScript's Date.toISOString.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

// ErrNotObject is returned when a registration body is valid JSON but not an object.
var ErrNotObject = errors.New("registration must be a JSON object")

// DecodeError reports a registration body that could not be parsed.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode registration: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err came from parsing the request body.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Document is the on-disk layout.
type Document struct {
	EventInfo     map[string]any   `json:"eventInfo"`
	Registrations []map[string]any `json:"registrations"`
}

func emptyDocument() Document {
	return Document{EventInfo: map[string]any{}, Registrations: []map[string]any{}}
}

// Store reads and writes the document at Path. Writes within one process
// are serialised; separate processes sharing the file can still lose updates.
type Store struct {
	path string
	mu   sync.Mutex

	now   func() time.Time
	newID func() string
}

// New creates a store for the document at path. The file need not exist.
func New(path string) *Store {
	return &Store{
		path:  path,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Path returns the document location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. A missing or corrupt file yields an empty
// document rather than an error.
// POST: EventInfo and Registrations are non-nil
func (s *Store) Load() Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// EventInfo returns the eventInfo object.
func (s *Store) EventInfo() map[string]any {
	return s.Load().EventInfo
}

// Registrations returns every stored registration in insertion order.
func (s *Store) Registrations() []map[string]any {
	return s.Load().Registrations
}

// Seed writes an initial document holding info when the file does not exist yet.
// POST: file exists; an existing file is left untouched
func (s *Store) Seed(info eventinfo.Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	doc := emptyDocument()
	if err := decodeObject(raw, &doc.EventInfo); err != nil {
		return err
	}
	return s.writeLocked(doc)
}

// Append decodes body as a registration object, stamps it with a fresh id
// and createdAt, appends it and rewrites the document.
// PRE: body is the raw request payload
// POST: on success the returned object is the last element of registrations;
// on a decode error the file is untouched
func (s *Store) Append(body []byte) (map[string]any, error) {
	var entry map[string]any
	if err := decodeObject(body, &entry); err != nil {
		return nil, &DecodeError{Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry["id"] = s.newID()
	entry["createdAt"] = s.now().UTC().Format(CreatedAtLayout)

	doc := s.readLocked()
	doc.Registrations = append(doc.Registrations, entry)
	if err := s.writeLocked(doc); err != nil {
		return nil, err
	}
	slog.Info("registration_event", "event", "stored", "backend", "jsonfile", "id", entry["id"])
	return entry, nil
}

// Submit stores a wizard record in the document. It satisfies wizard.Submitter.
func (s *Store) Submit(ctx context.Context, id wizard.Identity, rec registration.Record) (registration.Stored, error) {
	if err := ctx.Err(); err != nil {
		return registration.Stored{}, wizard.NewSubmissionError(wizard.StoreUnavailable, err)
	}
	rec = rec.Normalize()
	body, err := json.Marshal(rec)
	if err != nil {
		return registration.Stored{}, wizard.NewSubmissionError(wizard.Rejected, err)
	}
	entry, err := s.Append(body)
	if err != nil {
		return registration.Stored{}, wizard.NewSubmissionError(wizard.StoreUnavailable, err)
	}

	stored := registration.Stored{Record: rec, UserID: id.UserID}
	stored.ID, _ = entry["id"].(string)
	if ts, ok := entry["createdAt"].(string); ok {
		stored.CreatedAt, _ = time.Parse(CreatedAtLayout, ts)
	}
	return stored, nil
}

func (s *Store) readLocked() Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("jsonfile_read_failed", "path", s.path, "error", err)
		}
		return emptyDocument()
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		slog.Warn("jsonfile_corrupt", "path", s.path, "error", err)
		return emptyDocument()
	}
	if doc.EventInfo == nil {
		doc.EventInfo = map[string]any{}
	}
	if doc.Registrations == nil {
		doc.Registrations = []map[string]any{}
	}
	return doc
}

// writeLocked replaces the file via a temp file in the same directory.
func (s *Store) writeLocked(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".techfest-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod document: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close document: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// decodeObject parses a single JSON object, keeping numbers as json.Number.
func decodeObject(data []byte, dst *map[string]any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON object")
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return ErrNotObject
	}
	*dst = obj
	return nil
}
