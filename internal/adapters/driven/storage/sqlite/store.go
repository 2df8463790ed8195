package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/vectors"
	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// dbFile is the database file name inside the data directory.
const dbFile = "records.db"

// Store is a SQLite-backed document store.
type Store struct {
	db   *sql.DB
	path string

	// writeMu serialises writers; SQLite allows one at a time.
	writeMu sync.Mutex
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.educhat/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".educhat", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs all pending migrations and records their versions.
func (s *Store) migrate(fsys embed.FS) error {
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
		// "001_records.up.sql" -> 1
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
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// WriteRecords appends records in a single transaction.
// Every embedding must match the size of those already stored.
func (s *Store) WriteRecords(ctx context.Context, records []driven.EmbeddedRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	dims, err := storedDimensions(ctx, tx)
	if err != nil {
		return err
	}
	if dims == 0 {
		dims = len(records[0].Embedding)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (id, content, position, subject, metadata, embedding, dimensions, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if len(r.Embedding) != dims {
			return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, dims, len(r.Embedding))
		}

		metaJSON, err := json.Marshal(domain.CopyMetadata(r.Record.Meta))
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}

		createdAt := r.Record.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		_, err = stmt.ExecContext(ctx,
			r.Record.ID,
			r.Record.Content,
			r.Record.Position,
			r.Record.Subject(),
			string(metaJSON),
			vectors.Encode(r.Embedding),
			len(r.Embedding),
			createdAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("inserting record %s: %w", r.Record.ID, err)
		}
	}

	return tx.Commit()
}

// Dimensions returns the vector size of the stored records, or 0 when the
// store is empty.
func (s *Store) Dimensions(ctx context.Context) (int, error) {
	var dims int
	err := s.db.QueryRowContext(ctx, "SELECT dimensions FROM records LIMIT 1").Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading dimensions: %w", err)
	}
	return dims, nil
}

func storedDimensions(ctx context.Context, tx *sql.Tx) (int, error) {
	var dims int
	err := tx.QueryRowContext(ctx, "SELECT dimensions FROM records LIMIT 1").Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading dimensions: %w", err)
	}
	return dims, nil
}

// Search returns up to topK records matching filter, most similar first.
func (s *Store) Search(
	ctx context.Context, query []float32, topK int, filter domain.Filter,
) ([]domain.ScoredRecord, error) {
	if topK <= 0 {
		return []domain.ScoredRecord{}, nil
	}

	q := "SELECT id, content, position, metadata, embedding, created_at FROM records"
	var args []any
	if !filter.IsEmpty() {
		q += " WHERE subject = ?"
		args = append(args, filter.Subject)
	}
	q += " ORDER BY seq"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var hits []domain.ScoredRecord
	for rows.Next() {
		rec, embedding, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if len(embedding) != len(query) {
			return nil, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, len(embedding), len(query))
		}
		hits = append(hits, domain.ScoredRecord{
			IndexedRecord: rec,
			Score:         vectors.Cosine(query, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	if hits == nil {
		return []domain.ScoredRecord{}, nil
	}
	return vectors.Rank(hits, topK), nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// scanRecord scans one row of the records query.
func scanRecord(rows *sql.Rows) (domain.IndexedRecord, []float32, error) {
	var rec domain.IndexedRecord
	var metadataJSON, createdAt string
	var embeddingBlob []byte

	if err := rows.Scan(&rec.ID, &rec.Content, &rec.Position, &metadataJSON, &embeddingBlob, &createdAt); err != nil {
		return rec, nil, fmt.Errorf("scanning record: %w", err)
	}

	rec.Meta = map[string]any{}
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &rec.Meta); err != nil {
			return rec, nil, fmt.Errorf("unmarshalling record metadata: %w", err)
		}
	}
	vectors.RestoreIntegers(rec.Meta)

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		rec.CreatedAt = t
	}

	return rec, vectors.Decode(embeddingBlob), nil
}
