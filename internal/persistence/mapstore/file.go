package mapstore

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/klauspost/compress/zstd"

	"planetgen.ai/internal/grid"
	"planetgen.ai/internal/terrain/sampler"
)

const fileVersion = 1

// Header is the first line of an elevation file, readable without decoding
// the body.
type Header struct {
	Version   int          `json:"version"`
	Digest    string       `json:"digest"`
	Options   grid.Options `json:"options"`
	SeedValue uint64       `json:"seed_value"`
	Points    int          `json:"points"`
}

type body struct {
	Points    []mgl64.Vec2
	Elevation []float64
	Stats     sampler.Summary
}

// WriteMap stores m as a JSON header line followed by a gob body, zstd
// compressed. The file is written to a temp name and renamed into place.
func WriteMap(path, digest string, m *grid.Map) error {
	if len(m.Points) != len(m.Elevation) {
		return fmt.Errorf("map has %d points but %d elevations", len(m.Points), len(m.Elevation))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := encodeMap(f, digest, m); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encodeMap(f *os.File, digest string, m *grid.Map) error {
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(Header{
		Version:   fileVersion,
		Digest:    digest,
		Options:   m.Options,
		SeedValue: m.SeedValue,
		Points:    len(m.Points),
	})
	if _, err := bw.Write(hb); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		_ = enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(body{Points: m.Points, Elevation: m.Elevation, Stats: m.Stats}); err != nil {
		_ = enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

func ReadMap(path string) (Header, *grid.Map, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, nil, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, nil, fmt.Errorf("read header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, nil, fmt.Errorf("decode header: %w", err)
	}
	if h.Version != fileVersion {
		return h, nil, fmt.Errorf("unsupported map file version %d", h.Version)
	}
	var b body
	if err := gob.NewDecoder(br).Decode(&b); err != nil {
		return h, nil, fmt.Errorf("gob decode: %w", err)
	}
	if len(b.Points) != h.Points || len(b.Elevation) != h.Points {
		return h, nil, fmt.Errorf("map body has %d points, %d elevations; header says %d", len(b.Points), len(b.Elevation), h.Points)
	}
	return h, &grid.Map{
		Options:   h.Options,
		SeedValue: h.SeedValue,
		Points:    b.Points,
		Elevation: b.Elevation,
		Stats:     b.Stats,
	}, nil
}
