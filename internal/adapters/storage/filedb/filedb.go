// Package filedb keeps every collection in a single JSON document on disk.
// It is the fallback backend when SQLite cannot be opened.
package filedb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gymdesk/internal/domain/account"
	"gymdesk/internal/domain/attendance"
	"gymdesk/internal/domain/lead"
	"gymdesk/internal/domain/membership"
	"gymdesk/internal/domain/otp"
	"gymdesk/internal/domain/performance"
	"gymdesk/internal/domain/pitch"
	"gymdesk/internal/domain/settings"
	"gymdesk/internal/domain/trainer"
)

// Settings holds singleton configuration documents.
type Settings struct {
	Benefits *settings.Benefits `json:"benefits,omitempty"`
}

// Metrics is bookkeeping about the file itself.
type Metrics struct {
	Writes      int64     `json:"writes"`
	LastWriteAt time.Time `json:"lastWriteAt"`
}

// Document is the whole persisted state.
type Document struct {
	Memberships       []membership.Membership `json:"memberships"`
	Trainers          []trainer.Trainer       `json:"trainers"`
	Pitches           []pitch.Pitch           `json:"pitches"`
	Leads             []lead.Lead             `json:"leads"`
	MembershipHistory []membership.History    `json:"membershipHistory"`
	UserMemberships   []otp.Link              `json:"userMemberships"`
	Attendance        []attendance.Attendance `json:"attendance"`
	Accounts          []account.Account       `json:"accounts"`
	OTPSessions       []otp.Session           `json:"otpSessions"`
	Performance       []performance.Target    `json:"performance"`
	Settings          Settings                `json:"settings"`
	Metrics           Metrics                 `json:"metrics"`
}

// DB reads and rewrites one JSON file.
type DB struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// Open prepares a file-backed document store.
// PRE: the parent directory of path is writable
// POST: the directory exists; the file itself is created on first Update
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &DB{path: path, now: time.Now}, nil
}

// Path returns the backing file path.
func (d *DB) Path() string {
	return d.path
}

// Read returns an independent copy of the document.
// POST: a missing file yields an empty document and no error
func (d *DB) Read(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	return d.load()
}

// Update applies transform to a fresh copy of the document and atomically replaces the file.
// Calls are serialized. When transform returns an error nothing is written and the error is returned as is.
func (d *DB) Update(ctx context.Context, transform func(doc *Document) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := d.load()
	if err != nil {
		return err
	}
	if err := transform(&doc); err != nil {
		return err
	}
	doc.Metrics.Writes++
	doc.Metrics.LastWriteAt = d.now().UTC()
	return d.write(doc)
}

func (d *DB) load() (Document, error) {
	var doc Document
	data, err := os.ReadFile(d.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", d.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", d.path, err)
	}
	return doc, nil
}

func (d *DB) write(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(d.path), ".filedb-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("replace %s: %w", d.path, err)
	}
	return nil
}
