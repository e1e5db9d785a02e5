// Package store persists dashboard state as key/value rows in SQLite or
// MySQL.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"

	"rms-dashboard-go/internal/types"
)

// Persisted keys.
const (
	KeyExcelData  = "rmsExcelData"
	KeyDataLoaded = "rmsDataLoaded"
	KeyDataMeta   = "rmsDataMeta"
	KeySoundMuted = "soundMuted"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

var (
	ErrNotFound   = errors.New("state key not found")
	ErrNoSnapshot = errors.New("no persisted snapshot")
	ErrCorrupt    = errors.New("persisted snapshot is corrupt")
)

// Store manages the app_state table.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Snapshot is the last successfully loaded grid plus where it came from.
type Snapshot struct {
	ID       string     `json:"id"`
	Source   string     `json:"source"`
	LoadedAt time.Time  `json:"loaded_at"`
	Grid     types.Grid `json:"-"`
}

// Open connects to driver/dsn and ensures the schema exists.
func Open(driver, dsn string) (*Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("store dsn required")
	}
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
	case DriverMySQL:
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS app_state (
  state_key VARCHAR(64) NOT NULL PRIMARY KEY,
  state_value LONGTEXT NOT NULL,
  updated_at BIGINT NOT NULL
);
`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, driver: driver, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT state_value FROM app_state WHERE state_key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.upsertSQL(), key, value, s.now().Unix())
	return err
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM app_state WHERE state_key = ?`, k); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertSQL() string {
	if s.driver == DriverMySQL {
		return `
INSERT INTO app_state (state_key, state_value, updated_at)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE state_value = VALUES(state_value), updated_at = VALUES(updated_at);
`
	}
	return `
INSERT INTO app_state (state_key, state_value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(state_key) DO UPDATE SET
  state_value = excluded.state_value,
  updated_at = excluded.updated_at;
`
}

// SaveSnapshot stores the grid and marks data as loaded in one transaction.
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap.Grid)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	meta, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot meta: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := s.now().Unix()
	for _, kv := range [][2]string{
		{KeyExcelData, string(data)},
		{KeyDataMeta, string(meta)},
		{KeyDataLoaded, "true"},
	} {
		if _, err := tx.ExecContext(ctx, s.upsertSQL(), kv[0], kv[1], now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// LoadSnapshot returns the persisted grid. ErrNoSnapshot when nothing was
// saved; ErrCorrupt when the payload does not decode to a grid.
func (s *Store) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	loaded, err := s.Get(ctx, KeyDataLoaded)
	if errors.Is(err, ErrNotFound) || (err == nil && loaded != "true") {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, err
	}

	raw, err := s.Get(ctx, KeyExcelData)
	if errors.Is(err, ErrNotFound) {
		return Snapshot{}, ErrCorrupt
	}
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap.Grid); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(snap.Grid) == 0 {
		return Snapshot{}, ErrCorrupt
	}

	// metadata is informational; a missing or bad record leaves it blank
	if m, err := s.Get(ctx, KeyDataMeta); err == nil {
		_ = json.Unmarshal([]byte(m), &snap)
	}
	return snap, nil
}

func (s *Store) ClearSnapshot(ctx context.Context) error {
	return s.Delete(ctx, KeyExcelData, KeyDataLoaded, KeyDataMeta)
}

// SoundMuted defaults to false when never set.
func (s *Store) SoundMuted(ctx context.Context) (bool, error) {
	v, err := s.Get(ctx, KeySoundMuted)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (s *Store) SetSoundMuted(ctx context.Context, muted bool) error {
	v := "false"
	if muted {
		v = "true"
	}
	return s.Set(ctx, KeySoundMuted, v)
}
