package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/campusware/advisor/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/campusware/advisor/internal/core/domain"
	"github.com/campusware/advisor/internal/core/ports/driven"
	"github.com/campusware/advisor/internal/logger"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is the SQLite-backed persisted tier of the response cache.
// Entries survive restarts; the in-memory tier hydrates from here on startup.
type CacheStore struct {
	db   *sql.DB
	path string
}

// NewCacheStore opens (or creates) the cache database at the specified data
// directory. If dataDir is empty, defaults to ~/.advisor/data/cache.db.
func NewCacheStore(dataDir string) (*CacheStore, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".advisor", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "cache.db")

	// WAL mode so a lookup never blocks behind a write-through.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &CacheStore{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *CacheStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *CacheStore) Path() string {
	return s.path
}

func (s *CacheStore) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// Keys enumerates all stored fingerprints for startup hydration.
func (s *CacheStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT fingerprint FROM cache_entries ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("listing cache fingerprints: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			logger.Warn("skipping unreadable cache row: %v", err)
			continue
		}
		keys = append(keys, fp)
	}
	return keys, rows.Err()
}

// Get retrieves an entry by fingerprint. Returns domain.ErrNotFound if the
// fingerprint is absent.
func (s *CacheStore) Get(ctx context.Context, fingerprint string) (*domain.CacheEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT fingerprint, query, language, answer, created_at, ttl_seconds,
		       hit_count, referenced_programs, query_vector
		FROM cache_entries WHERE fingerprint = ?
	`, fingerprint)

	var (
		entry      domain.CacheEntry
		createdAt  string
		refsJSON   sql.NullString
		vectorBlob []byte
	)
	err := row.Scan(&entry.Fingerprint, &entry.Query, &entry.Language, &entry.Answer,
		&createdAt, &entry.TTL, &entry.HitCount, &refsJSON, &vectorBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache entry %s: %w", fingerprint, err)
	}

	entry.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at for %s: %w", fingerprint, err)
	}
	if refsJSON.Valid && refsJSON.String != "" {
		if err := json.Unmarshal([]byte(refsJSON.String), &entry.ReferencedPrograms); err != nil {
			return nil, fmt.Errorf("parsing referenced programs for %s: %w", fingerprint, err)
		}
	}
	entry.QueryVector = bytesToFloat32Slice(vectorBlob)

	return &entry, nil
}

// Set stores or replaces an entry under its fingerprint.
func (s *CacheStore) Set(ctx context.Context, entry *domain.CacheEntry) error {
	var refsJSON []byte
	if len(entry.ReferencedPrograms) > 0 {
		var err error
		refsJSON, err = json.Marshal(entry.ReferencedPrograms)
		if err != nil {
			return fmt.Errorf("encoding referenced programs: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_entries
			(fingerprint, query, language, answer, created_at, ttl_seconds,
			 hit_count, referenced_programs, query_vector)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO UPDATE SET
			query = excluded.query,
			language = excluded.language,
			answer = excluded.answer,
			created_at = excluded.created_at,
			ttl_seconds = excluded.ttl_seconds,
			hit_count = excluded.hit_count,
			referenced_programs = excluded.referenced_programs,
			query_vector = excluded.query_vector
	`, entry.Fingerprint, entry.Query, entry.Language, entry.Answer,
		entry.CreatedAt.Format(time.RFC3339Nano), entry.TTL, entry.HitCount,
		string(refsJSON), float32SliceToBytes(entry.QueryVector))
	if err != nil {
		return fmt.Errorf("writing cache entry %s: %w", entry.Fingerprint, err)
	}
	return nil
}

// Delete removes an entry. Deleting an absent fingerprint is not an error.
func (s *CacheStore) Delete(ctx context.Context, fingerprint string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE fingerprint = ?", fingerprint); err != nil {
		return fmt.Errorf("deleting cache entry %s: %w", fingerprint, err)
	}
	return nil
}

// Clear removes every entry.
func (s *CacheStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM cache_entries"); err != nil {
		return fmt.Errorf("clearing cache entries: %w", err)
	}
	return nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
