package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	web "gymdesk/internal/adapters/http"
	"gymdesk/internal/adapters/http/perf"
	"gymdesk/internal/adapters/storage"
	accountStore "gymdesk/internal/adapters/storage/account"
	attendanceStore "gymdesk/internal/adapters/storage/attendance"
	"gymdesk/internal/adapters/storage/filedb"
	leadStore "gymdesk/internal/adapters/storage/lead"
	membershipStore "gymdesk/internal/adapters/storage/membership"
	otpStore "gymdesk/internal/adapters/storage/otp"
	performanceStore "gymdesk/internal/adapters/storage/performance"
	pitchStore "gymdesk/internal/adapters/storage/pitch"
	settingsStore "gymdesk/internal/adapters/storage/settings"
	trainerStore "gymdesk/internal/adapters/storage/trainer"
	"gymdesk/internal/config"
)

// openedStorage is the backend chosen at startup.
type openedStorage struct {
	backend string
	stores  web.Stores
	close   func() error
}

// openStorage selects the backend once.
// "auto" tries SQLite and falls back to the JSON file when it cannot be opened or migrated.
func openStorage(cfg config.StorageConfig, collector *perf.Collector) (openedStorage, error) {
	switch cfg.Backend {
	case config.BackendFile:
		return openFileStorage(cfg.FilePath)
	case config.BackendSQLite:
		return openSQLiteStorage(cfg.SQLitePath, collector)
	}

	opened, err := openSQLiteStorage(cfg.SQLitePath, collector)
	if err == nil {
		return opened, nil
	}
	slog.Warn("storage_event", "event", "sqlite_unavailable", "path", cfg.SQLitePath, "error", err, "fallback", cfg.FilePath)
	return openFileStorage(cfg.FilePath)
}

func openSQLiteStorage(path string, collector *perf.Collector) (openedStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return openedStorage{}, fmt.Errorf("create data dir: %w", err)
	}
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return openedStorage{}, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer keeps mutation+history transactions from hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return openedStorage{}, fmt.Errorf("ping sqlite: %w", err)
	}
	if err := storage.MigrateDB(db, path); err != nil {
		db.Close()
		return openedStorage{}, fmt.Errorf("migrate sqlite: %w", err)
	}

	timed := storage.NewTimedDB(db, collector)
	slog.Info("storage_event", "event", "backend_selected", "backend", config.BackendSQLite, "path", path,
		"schema", storage.LatestSchemaVersion())
	return openedStorage{
		backend: config.BackendSQLite,
		stores: web.Stores{
			AccountStore:     accountStore.NewSQLiteStore(timed),
			MembershipStore:  membershipStore.NewSQLiteStore(timed),
			LeadStore:        leadStore.NewSQLiteStore(timed),
			TrainerStore:     trainerStore.NewSQLiteStore(timed),
			PitchStore:       pitchStore.NewSQLiteStore(timed),
			AttendanceStore:  attendanceStore.NewSQLiteStore(timed),
			OTPStore:         otpStore.NewSQLiteStore(timed),
			PerformanceStore: performanceStore.NewSQLiteStore(timed),
			SettingsStore:    settingsStore.NewSQLiteStore(timed),
		},
		close: timed.Close,
	}, nil
}

func openFileStorage(path string) (openedStorage, error) {
	db, err := filedb.Open(path)
	if err != nil {
		return openedStorage{}, err
	}
	slog.Info("storage_event", "event", "backend_selected", "backend", config.BackendFile, "path", path)
	return openedStorage{
		backend: config.BackendFile,
		stores: web.Stores{
			AccountStore:     accountStore.NewFileStore(db),
			MembershipStore:  membershipStore.NewFileStore(db),
			LeadStore:        leadStore.NewFileStore(db),
			TrainerStore:     trainerStore.NewFileStore(db),
			PitchStore:       pitchStore.NewFileStore(db),
			AttendanceStore:  attendanceStore.NewFileStore(db),
			OTPStore:         otpStore.NewFileStore(db),
			PerformanceStore: performanceStore.NewFileStore(db),
			SettingsStore:    settingsStore.NewFileStore(db),
		},
		close: func() error { return nil },
	}, nil
}
