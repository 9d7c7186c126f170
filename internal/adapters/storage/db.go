package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ErrNotFound is wrapped by every store when a record does not exist.
var ErrNotFound = errors.New("not found")

// TimeLayout is the text format used for all timestamps stored in SQLite.
// The fraction is fixed-width so text order matches time order.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// migration upgrades the schema by one version inside a transaction.
type migration func(tx *sql.Tx) error

var migrations = []migration{
	migrateBaseline,
	migrateHistoryIndexes,
}

// LatestSchemaVersion returns the version MigrateDB brings a database to.
func LatestSchemaVersion() int {
	return len(migrations)
}

// SchemaVersion reads the applied schema version.
// POST: 0 for a database that has never been migrated
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return 0, err
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, err
	}
	return int(v.Int64), nil
}

// MigrateDB brings the schema up to date.
// PRE: db is a valid database connection; path is the file backing db or ":memory:"
// POST: All pending migrations applied in order; a file database is copied to
// path.bak-v<N> before the first pending migration runs
func MigrateDB(db *sql.DB, path string) error {
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	current, err := SchemaVersion(db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current >= LatestSchemaVersion() {
		return nil
	}
	if current > 0 && path != "" && !strings.Contains(path, ":memory:") {
		if err := backupFile(path, fmt.Sprintf("%s.bak-v%d", path, current)); err != nil {
			return fmt.Errorf("backup before migration: %w", err)
		}
	}
	for v := current; v < LatestSchemaVersion(); v++ {
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if err := migrations[v](tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", v+1, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v+1); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		slog.Info("storage_event", "event", "schema_migrated", "version", v+1)
	}
	return nil
}

func backupFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func migrateBaseline(tx *sql.Tx) error {
	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL COLLATE NOCASE UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS membership (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		normalized_phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL,
		label TEXT NOT NULL,
		price REAL NOT NULL,
		original REAL,
		tag TEXT NOT NULL DEFAULT '',
		preferred_date TEXT NOT NULL DEFAULT '',
		payment_mode TEXT NOT NULL DEFAULT '',
		remarks TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS membership_history (
		id TEXT PRIMARY KEY,
		membership_id TEXT NOT NULL,
		membership_label TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		amount REAL,
		payment_mode TEXT NOT NULL DEFAULT '',
		changes TEXT NOT NULL DEFAULT '{}',
		occurred_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS lead (
		id TEXT PRIMARY KEY,
		normalized_phone TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		converted_at TEXT,
		doc TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trainer (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		specialty TEXT NOT NULL DEFAULT '',
		experience_years INTEGER,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS pitch (
		id TEXT PRIMARY KEY,
		lead_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		phone TEXT NOT NULL DEFAULT '',
		plan TEXT NOT NULL DEFAULT '',
		amount REAL,
		outcome TEXT NOT NULL,
		pitched_by TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		pitched_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		lead_id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		check_in_time TEXT NOT NULL,
		class_date TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS otp_session (
		id TEXT PRIMARY KEY,
		phone TEXT NOT NULL,
		normalized_phone TEXT NOT NULL,
		session_id TEXT NOT NULL DEFAULT '',
		provider TEXT NOT NULL DEFAULT '',
		code_hash TEXT NOT NULL DEFAULT '',
		expires_at TEXT NOT NULL,
		verified INTEGER NOT NULL DEFAULT 0,
		attempts INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS member_link (
		normalized_phone TEXT PRIMARY KEY,
		lead_id TEXT NOT NULL DEFAULT '',
		verified_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS performance_target (
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		target REAL NOT NULL DEFAULT 0,
		target_history TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (year, month)
	);

	CREATE TABLE IF NOT EXISTS setting (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_class_date ON attendance(class_date);
	CREATE INDEX IF NOT EXISTS idx_otp_session_phone ON otp_session(normalized_phone, created_at);
	CREATE INDEX IF NOT EXISTS idx_lead_status ON lead(status);
	`
	_, err := tx.Exec(schema)
	return err
}

func migrateHistoryIndexes(tx *sql.Tx) error {
	_, err := tx.Exec(`
	CREATE INDEX IF NOT EXISTS idx_history_occurred ON membership_history(occurred_at);
	CREATE INDEX IF NOT EXISTS idx_history_membership ON membership_history(membership_id, occurred_at);
	CREATE INDEX IF NOT EXISTS idx_membership_phone ON membership(normalized_phone);
	`)
	return err
}
