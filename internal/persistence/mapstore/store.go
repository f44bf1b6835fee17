package mapstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"planetgen.ai/internal/grid"
)

// Store keeps generated maps under <dir>/maps and indexes them in
// <dir>/index.db.
type Store struct {
	dir string
	idx *Index
}

func Open(dir string) (*Store, error) {
	idx, err := OpenIndex(filepath.Join(dir, "index.db"))
	if err != nil {
		return nil, err
	}
	return &Store{dir: dir, idx: idx}, nil
}

func (s *Store) Close() error { return s.idx.Close() }

func (s *Store) Index() *Index { return s.idx }

func (s *Store) PathFor(digest string) string {
	return filepath.Join(s.dir, "maps", digest+".elev.zst")
}

// Get loads a stored map. A row whose file has gone missing is dropped from
// the index and reported as absent.
func (s *Store) Get(ctx context.Context, digest string) (*grid.Map, bool, error) {
	row, ok, err := s.idx.Get(ctx, digest)
	if err != nil || !ok {
		return nil, false, err
	}
	_, m, err := ReadMap(row.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, s.idx.Delete(ctx, digest)
	}
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (s *Store) Put(ctx context.Context, digest string, m *grid.Map) (string, error) {
	path := s.PathFor(digest)
	if err := WriteMap(path, digest, m); err != nil {
		return "", err
	}
	err := s.idx.Put(ctx, Row{
		Digest:    digest,
		Seed:      m.Seed,
		SeedValue: m.SeedValue,
		Width:     m.Width,
		Height:    m.Height,
		Spacing:   m.Spacing,
		Chaos:     m.Chaos,
		Points:    len(m.Points),
		Min:       m.Stats.Min,
		Max:       m.Stats.Max,
		Path:      path,
	})
	return path, err
}
