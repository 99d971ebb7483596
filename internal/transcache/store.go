package transcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	timeLayout              = time.RFC3339Nano
)

// Key identifies one cached translation.
type Key struct {
	Provider string
	Source   string
	Target   string
	Text     string
}

// Hash returns the hex SHA-256 of the key's text.
func (k Key) Hash() string {
	sum := sha256.Sum256([]byte(k.Text))
	return hex.EncodeToString(sum[:])
}

// Store manages translation persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open initializes or connects to the cache database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("transcache: path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, err)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the cached translation for key and records the hit.
func (s *Store) Get(ctx context.Context, key Key) (string, bool, error) {
	var translation string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT translation FROM translations
			 WHERE provider = ? AND source_lang = ? AND target_lang = ? AND text_hash = ?`,
			key.Provider, key.Source, key.Target, key.Hash(),
		).Scan(&translation)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("transcache get: %w", err)
	}
	if err := s.exec(ctx,
		`UPDATE translations SET hits = hits + 1, last_used_at = ?
		 WHERE provider = ? AND source_lang = ? AND target_lang = ? AND text_hash = ?`,
		s.now().UTC().Format(timeLayout), key.Provider, key.Source, key.Target, key.Hash(),
	); err != nil {
		return "", false, fmt.Errorf("transcache touch: %w", err)
	}
	return translation, true, nil
}

// Put stores translation for key, replacing any previous value. runID tags
// the conversion run that produced it.
func (s *Store) Put(ctx context.Context, key Key, translation, runID string) error {
	now := s.now().UTC().Format(timeLayout)
	err := s.exec(ctx,
		`INSERT INTO translations
		   (provider, source_lang, target_lang, text_hash, source_text, translation, run_id, created_at, last_used_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (provider, source_lang, target_lang, text_hash) DO UPDATE SET
		   translation = excluded.translation,
		   run_id = excluded.run_id,
		   last_used_at = excluded.last_used_at`,
		key.Provider, key.Source, key.Target, key.Hash(), key.Text, translation, runID, now, now,
	)
	if err != nil {
		return fmt.Errorf("transcache put: %w", err)
	}
	return nil
}

// LanguageStats summarizes the entries for one target language.
type LanguageStats struct {
	Target  string `json:"target"`
	Entries int64  `json:"entries"`
	Hits    int64  `json:"hits"`
}

// Stats summarizes the cache contents.
type Stats struct {
	Path      string          `json:"path"`
	Entries   int64           `json:"entries"`
	Hits      int64           `json:"hits"`
	Languages []LanguageStats `json:"languages"`
	Oldest    time.Time       `json:"oldest,omitzero"`
	Newest    time.Time       `json:"newest,omitzero"`
}

// Stats reports entry and hit counts per target language.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	rows, err := s.db.QueryContext(ctx,
		`SELECT target_lang, COUNT(1), COALESCE(SUM(hits), 0)
		 FROM translations GROUP BY target_lang ORDER BY target_lang`)
	if err != nil {
		return stats, fmt.Errorf("transcache stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang LanguageStats
		if err := rows.Scan(&lang.Target, &lang.Entries, &lang.Hits); err != nil {
			return stats, fmt.Errorf("transcache stats scan: %w", err)
		}
		stats.Entries += lang.Entries
		stats.Hits += lang.Hits
		stats.Languages = append(stats.Languages, lang)
	}
	if err := rows.Err(); err != nil {
		return stats, fmt.Errorf("transcache stats rows: %w", err)
	}
	if stats.Entries == 0 {
		return stats, nil
	}

	var oldest, newest string
	if err := s.db.QueryRowContext(ctx,
		"SELECT MIN(created_at), MAX(last_used_at) FROM translations",
	).Scan(&oldest, &newest); err != nil {
		return stats, fmt.Errorf("transcache stats range: %w", err)
	}
	stats.Oldest, _ = time.Parse(timeLayout, oldest)
	stats.Newest, _ = time.Parse(timeLayout, newest)
	return stats, nil
}

// Clear removes cached entries for target, or every entry when target is
// empty. It returns the number of rows removed.
func (s *Store) Clear(ctx context.Context, target string) (int64, error) {
	query := "DELETE FROM translations"
	var args []any
	if target = strings.TrimSpace(target); target != "" {
		query += " WHERE target_lang = ?"
		args = append(args, target)
	}
	var removed int64
	err := retryOnBusy(ctx, func() error {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("transcache clear: %w", err)
	}
	return removed, nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query, args...)
		return err
	})
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			return lastErr
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}
