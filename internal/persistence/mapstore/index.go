package mapstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// Row is one indexed map.
type Row struct {
	Digest    string
	Seed      string
	SeedValue uint64
	Width     float64
	Height    float64
	Spacing   float64
	Chaos     float64
	Points    int
	Min       float64
	Max       float64
	Path      string
	CreatedAt string
}

type Index struct {
	db *sql.DB
}

func OpenIndex(path string) (*Index, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1');`,
		`CREATE TABLE IF NOT EXISTS maps (
			digest TEXT PRIMARY KEY,
			seed TEXT NOT NULL,
			seed_value TEXT NOT NULL,
			width REAL NOT NULL,
			height REAL NOT NULL,
			spacing REAL NOT NULL,
			chaos REAL NOT NULL,
			points INTEGER NOT NULL,
			min REAL NOT NULL,
			max REAL NOT NULL,
			path TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_maps_seed ON maps(seed);`,
		`CREATE INDEX IF NOT EXISTS idx_maps_created ON maps(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (x *Index) Close() error {
	if x == nil {
		return nil
	}
	return x.db.Close()
}

func (x *Index) Put(ctx context.Context, r Row) error {
	if r.CreatedAt == "" {
		r.CreatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	// seed_value is stored as text: SQLite integers are signed 64-bit.
	_, err := x.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO maps(digest,seed,seed_value,width,height,spacing,chaos,points,min,max,path,created_at) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.Digest, r.Seed, strconv.FormatUint(r.SeedValue, 10), r.Width, r.Height, r.Spacing, r.Chaos, r.Points, r.Min, r.Max, r.Path, r.CreatedAt,
	)
	return err
}

const selectRow = `SELECT digest,seed,seed_value,width,height,spacing,chaos,points,min,max,path,created_at FROM maps`

type scanner interface {
	Scan(dest ...any) error
}

func scanRow(s scanner) (Row, error) {
	var r Row
	var seedValue string
	err := s.Scan(&r.Digest, &r.Seed, &seedValue, &r.Width, &r.Height, &r.Spacing, &r.Chaos, &r.Points, &r.Min, &r.Max, &r.Path, &r.CreatedAt)
	if err != nil {
		return r, err
	}
	r.SeedValue, err = strconv.ParseUint(seedValue, 10, 64)
	if err != nil {
		return r, fmt.Errorf("seed_value %q: %w", seedValue, err)
	}
	return r, nil
}

// Get reports ok=false when digest is not indexed.
func (x *Index) Get(ctx context.Context, digest string) (Row, bool, error) {
	r, err := scanRow(x.db.QueryRowContext(ctx, selectRow+` WHERE digest=?`, digest))
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, err
	}
	return r, true, nil
}

// List returns the newest rows first. An empty seed matches every map.
func (x *Index) List(ctx context.Context, seed string, limit int) ([]Row, error) {
	if limit <= 0 {
		limit = 50
	}
	q := selectRow + ` ORDER BY created_at DESC LIMIT ?`
	args := []any{limit}
	if seed != "" {
		q = selectRow + ` WHERE seed=? ORDER BY created_at DESC LIMIT ?`
		args = []any{seed, limit}
	}
	rows, err := x.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Row
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (x *Index) Delete(ctx context.Context, digest string) error {
	_, err := x.db.ExecContext(ctx, `DELETE FROM maps WHERE digest=?`, digest)
	return err
}
