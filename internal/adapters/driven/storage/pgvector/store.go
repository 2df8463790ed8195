// Package pgvector provides a PostgreSQL document store using the pgvector
// extension. It is the store of the full tier: similarity search runs in the
// database with the cosine distance operator.
package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/educhat/internal/adapters/driven/storage/vectors"
	"github.com/custodia-labs/educhat/internal/core/domain"
	"github.com/custodia-labs/educhat/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// DefaultTable is the records table name.
const DefaultTable = "educhat_records"

var tableName = regexp.MustCompile(`^[a-z_][a-z0-9_]{0,62}$`)

// Config holds configuration for the pgvector store.
type Config struct {
	// URL is the PostgreSQL connection string (required).
	URL string

	// Table is the records table (default: educhat_records).
	Table string

	// Dimensions is the embedding size the table is created with (required).
	Dimensions int
}

// Store is a PostgreSQL + pgvector document store.
type Store struct {
	pool       *pgxpool.Pool
	table      string
	dimensions int
}

// NewStore connects, enables the vector extension and creates the records
// table if needed. An existing table with a different vector size is
// rejected with domain.ErrDimensionMismatch.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("%w: pgvector: no database URL", domain.ErrStoreUnavailable)
	}
	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("%w: pgvector: dimensions must be positive", domain.ErrInvalidConfig)
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if !tableName.MatchString(cfg.Table) {
		return nil, fmt.Errorf("%w: pgvector: invalid table name %q", domain.ErrInvalidConfig, cfg.Table)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: pgvector: parse url: %v", domain.ErrStoreUnavailable, err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: pgvector: %v", domain.ErrStoreUnavailable, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: pgvector: ping failed: %v", domain.ErrStoreUnavailable, err)
	}

	s := &Store{pool: pool, table: cfg.Table, dimensions: cfg.Dimensions}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return fmt.Errorf("%w: pgvector: create extension: %v", domain.ErrStoreUnavailable, err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			seq        BIGSERIAL PRIMARY KEY,
			id         TEXT NOT NULL UNIQUE,
			content    TEXT NOT NULL,
			position   INTEGER NOT NULL,
			subject    TEXT NOT NULL DEFAULT '',
			metadata   JSONB NOT NULL DEFAULT '{}',
			embedding  vector(%[2]d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`, s.ident(), s.dimensions)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("pgvector: create table: %w", err)
	}

	index := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (subject)",
		pgx.Identifier{s.table + "_subject_idx"}.Sanitize(), s.ident())
	if _, err := s.pool.Exec(ctx, index); err != nil {
		return fmt.Errorf("pgvector: create index: %w", err)
	}

	// For vector columns atttypmod holds the declared size.
	var existing int
	err := s.pool.QueryRow(ctx, `
		SELECT atttypmod FROM pg_attribute
		WHERE attrelid = $1::regclass AND attname = 'embedding'`, s.table).Scan(&existing)
	if err != nil {
		return fmt.Errorf("pgvector: read column size: %w", err)
	}
	if existing != s.dimensions {
		return fmt.Errorf("%w: table %s stores %d, embedder produces %d",
			domain.ErrDimensionMismatch, s.table, existing, s.dimensions)
	}
	return nil
}

// WriteRecords inserts records in a single transaction.
func (s *Store) WriteRecords(ctx context.Context, records []driven.EmbeddedRecord) error {
	if len(records) == 0 {
		return nil
	}

	insert := fmt.Sprintf(`
		INSERT INTO %s (id, content, position, subject, metadata, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, s.ident())

	batch := &pgx.Batch{}
	for _, r := range records {
		if len(r.Embedding) != s.dimensions {
			return fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, s.dimensions, len(r.Embedding))
		}
		meta, err := json.Marshal(domain.CopyMetadata(r.Record.Meta))
		if err != nil {
			return fmt.Errorf("marshalling metadata: %w", err)
		}
		createdAt := r.Record.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		batch.Queue(insert,
			r.Record.ID,
			r.Record.Content,
			r.Record.Position,
			r.Record.Subject(),
			meta,
			pgvector.NewVector(r.Embedding),
			createdAt.UTC(),
		)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	results := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("inserting record %s: %w", records[i].Record.ID, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch: %w", err)
	}
	return tx.Commit(ctx)
}

// Search returns up to topK records matching filter, ordered by cosine
// distance. Score is the cosine similarity.
func (s *Store) Search(
	ctx context.Context, query []float32, topK int, filter domain.Filter,
) ([]domain.ScoredRecord, error) {
	if topK <= 0 {
		return []domain.ScoredRecord{}, nil
	}
	if len(query) != s.dimensions {
		return nil, fmt.Errorf("%w: expected %d, got %d", domain.ErrDimensionMismatch, s.dimensions, len(query))
	}

	args := []any{pgvector.NewVector(query), topK}
	where := ""
	if !filter.IsEmpty() {
		where = "WHERE subject = $3"
		args = append(args, filter.Subject)
	}

	q := fmt.Sprintf(`
		SELECT id, content, position, metadata, created_at, 1 - (embedding <=> $1) AS score
		FROM %s %s
		ORDER BY embedding <=> $1, seq
		LIMIT $2`, s.ident(), where)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	hits := []domain.ScoredRecord{}
	for rows.Next() {
		var hit domain.ScoredRecord
		var meta []byte
		if err := rows.Scan(&hit.ID, &hit.Content, &hit.Position, &meta, &hit.CreatedAt, &hit.Score); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		hit.Meta = map[string]any{}
		if err := json.Unmarshal(meta, &hit.Meta); err != nil {
			return nil, fmt.Errorf("unmarshalling record metadata: %w", err)
		}
		vectors.RestoreIntegers(hit.Meta)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return hits, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+s.ident()).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Dimensions returns the vector size of the records table.
func (s *Store) Dimensions() int {
	return s.dimensions
}

// Close closes the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Drop removes the records table and everything in it.
func (s *Store) Drop(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+s.ident()); err != nil {
		return fmt.Errorf("dropping table: %w", err)
	}
	return nil
}
