package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mediapull/internal/config"
)

// DefaultMaxEntries caps the history when no limit is configured.
const DefaultMaxEntries = 500

// Entry is one completed download.
type Entry struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id,omitempty"`
	Title      string    `json:"title"`
	URL        string    `json:"url"`
	Channel    string    `json:"channel"`
	Quality    string    `json:"quality"`
	Mode       string    `json:"mode,omitempty"`
	OutputPath string    `json:"output_path"`
	FileSize   int64     `json:"file_size"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store persists download history in SQLite.
type Store struct {
	db         *sql.DB
	path       string
	maxEntries int
}

// Open initializes or connects to the history database.
func Open(path string, maxEntries int) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, maxEntries: maxEntries}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// OpenFromConfig opens the configured history database.
func OpenFromConfig(cfg *config.Config) (*Store, error) {
	return Open(cfg.Paths.HistoryDB, cfg.History.MaxEntries)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Add records a download as the most recent entry and trims the oldest
// entries beyond the configured cap. Missing fields get defaults.
func (s *Store) Add(ctx context.Context, entry Entry) (Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if strings.TrimSpace(entry.Title) == "" {
		entry.Title = "Unknown"
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	entry.Timestamp = entry.Timestamp.UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("begin add tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO downloads (
            id, video_id, title, url, channel, quality, mode, output_path, file_size, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		nullableString(entry.VideoID),
		entry.Title,
		entry.URL,
		entry.Channel,
		entry.Quality,
		entry.Mode,
		entry.OutputPath,
		entry.FileSize,
		entry.Timestamp.Format(time.RFC3339Nano),
	); err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM downloads WHERE seq NOT IN (
            SELECT seq FROM downloads ORDER BY seq DESC LIMIT ?
        )`,
		s.maxEntries,
	); err != nil {
		return Entry{}, fmt.Errorf("trim history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("commit history entry: %w", err)
	}
	return entry, nil
}

// List returns entries, most recent first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := "SELECT " + entryColumns + " FROM downloads ORDER BY seq DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// Search returns entries whose title, channel or URL contains query,
// case-insensitively, most recent first.
func (s *Store) Search(ctx context.Context, query string) ([]Entry, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return s.List(ctx, 0)
	}
	return s.query(ctx,
		"SELECT "+entryColumns+` FROM downloads
        WHERE instr(lower(title), ?) > 0 OR instr(lower(channel), ?) > 0 OR instr(lower(url), ?) > 0
        ORDER BY seq DESC`,
		needle, needle, needle,
	)
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM downloads").Scan(&count); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return count, nil
}

// Clear removes every entry and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM downloads")
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return removed, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}
