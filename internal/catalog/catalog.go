package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/clobrano/newscast/internal/models"
)

const table = "media_files"

// Schema creates the single table the catalog needs.
const Schema = `CREATE TABLE IF NOT EXISTS media_files (
    id         BIGSERIAL PRIMARY KEY,
    kind       TEXT        NOT NULL,
    filename   TEXT        NOT NULL UNIQUE,
    path       TEXT        NOT NULL,
    public_url TEXT        NOT NULL,
    size       BIGINT      NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Postgres indexes saved media files.
type Postgres struct {
	db *sql.DB
}

// Open connects with the lib/pq driver and makes sure the table exists.
func Open(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping catalog: %w", err)
	}
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return New(db), nil
}

// New wires an existing sql.DB.
func New(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Record inserts file, ignoring a filename that is already indexed.
func (p *Postgres) Record(ctx context.Context, kind models.MediaKind, file models.SavedMediaFile) error {
	if p.db == nil {
		return nil
	}

	query, args, err := recordQuery(kind, file)
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := p.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert media file: %w", err)
	}
	return nil
}

func recordQuery(kind models.MediaKind, file models.SavedMediaFile) (string, []any, error) {
	return psql.Insert(table).
		Columns("kind", "filename", "path", "public_url", "size", "created_at").
		Values(string(kind), file.Filename, file.Path, file.PublicURL, file.Size, file.CreatedAt).
		Suffix("ON CONFLICT (filename) DO NOTHING").
		ToSql()
}

// Recent returns the newest files of kind, at most limit of them.
func (p *Postgres) Recent(ctx context.Context, kind models.MediaKind, limit uint64) ([]models.SavedMediaFile, error) {
	if p.db == nil {
		return nil, nil
	}

	query, args, err := recentQuery(kind, limit)
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query media files: %w", err)
	}

	var files []models.SavedMediaFile
	for rows.Next() {
		var f models.SavedMediaFile
		if err := rows.Scan(&f.Filename, &f.Path, &f.PublicURL, &f.Size, &f.CreatedAt); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan media file: %w", err)
		}
		files = append(files, f)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return files, nil
}

func recentQuery(kind models.MediaKind, limit uint64) (string, []any, error) {
	if limit == 0 {
		limit = 50
	}
	return psql.Select("filename", "path", "public_url", "size", "created_at").
		From(table).
		Where(sq.Eq{"kind": string(kind)}).
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
}
