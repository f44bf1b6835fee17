package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"planetgen.ai/internal/config"
	"planetgen.ai/internal/grid"
	"planetgen.ai/internal/persistence/mapstore"
	"planetgen.ai/internal/terrain/noise"
	"planetgen.ai/internal/terrain/planet"
	"planetgen.ai/internal/terrain/sampler"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "gen":
			genCmd(os.Args[2:])
			return
		case "at":
			atCmd(os.Args[2:])
			return
		case "maps":
			mapsCmd(os.Args[2:])
			return
		case "show":
			showCmd(os.Args[2:])
			return
		case "dial":
			dialCmd(os.Args[2:])
			return
		}
	}
	fmt.Fprintln(os.Stderr, "usage: planetctl gen|at|maps|show|dial [flags]")
	os.Exit(2)
}

func loadConfig(path, backend string) (config.Config, noise.Backend) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if strings.TrimSpace(backend) != "" {
		cfg.Noise.Backend = backend
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	return cfg, cfg.Backend()
}

func genCmd(args []string) {
	fs := flag.NewFlagSet("gen", flag.ExitOnError)
	configPath := fs.String("config", "", "planet config path (optional)")
	backend := fs.String("backend", "", "noise backend override: opensimplex|perlin")
	seed := fs.String("seed", "", "seed string")
	width := fs.Float64("width", 512, "map width")
	height := fs.Float64("height", 512, "map height")
	spacing := fs.Float64("spacing", 8, "lattice spacing")
	chaos := fs.Float64("chaos", 0.5, "jitter amount in [0,1]")
	workers := fs.Int("workers", -1, "sampler workers (default from config)")
	outPath := fs.String("out", "", "write the map as an elevation file (optional)")
	store := fs.Bool("store", false, "store and index the map under -data")
	dataDir := fs.String("data", "./data", "runtime data directory (with -store)")
	asJSON := fs.Bool("json", false, "print the full map as JSON")
	_ = fs.Parse(args)

	cfg, b := loadConfig(*configPath, *backend)
	if *workers >= 0 {
		cfg.Sampler.Workers = *workers
	}
	opt := grid.Options{Seed: *seed, Width: *width, Height: *height, Spacing: *spacing, Chaos: *chaos}
	m, err := grid.Generate(context.Background(), opt, grid.Terrain{
		Style:   cfg.Planet,
		Backend: b,
		Window:  cfg.Sampler.Window,
		Workers: cfg.Sampler.Workers,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "generate:", err)
		os.Exit(1)
	}
	digest := mapstore.Digest(opt, cfg.Planet, b, cfg.Sampler.Window)

	if *outPath != "" {
		if err := mapstore.WriteMap(*outPath, digest, m); err != nil {
			fmt.Fprintln(os.Stderr, "write:", err)
			os.Exit(1)
		}
	}
	if *store {
		s, err := mapstore.Open(*dataDir)
		if err != nil {
			fmt.Fprintln(os.Stderr, "open store:", err)
			os.Exit(1)
		}
		path, err := s.Put(context.Background(), digest, m)
		_ = s.Close()
		if err != nil {
			fmt.Fprintln(os.Stderr, "store:", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "stored", path)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		if err := enc.Encode(m); err != nil {
			fmt.Fprintln(os.Stderr, "encode:", err)
			os.Exit(1)
		}
		return
	}
	printSummary(digest, m.Seed, m.SeedValue, m.Stats)
}

func atCmd(args []string) {
	fs := flag.NewFlagSet("at", flag.ExitOnError)
	configPath := fs.String("config", "", "planet config path (optional)")
	backend := fs.String("backend", "", "noise backend override: opensimplex|perlin")
	seed := fs.String("seed", "", "seed string")
	x := fs.Float64("x", 0, "domain x")
	y := fs.Float64("y", 0, "domain y")
	_ = fs.Parse(args)

	cfg, b := loadConfig(*configPath, *backend)
	p, err := planet.Build(int64(grid.SeedFromString(*seed)), cfg.Planet, b)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build:", err)
		os.Exit(1)
	}
	f, err := sampler.NewField(p.Graph, sampler.Options{Width: 1, Height: 1, Window: cfg.Sampler.Window})
	if err != nil {
		fmt.Fprintln(os.Stderr, "field:", err)
		os.Exit(1)
	}
	v, err := f.At(*x, *y)
	if err != nil {
		fmt.Fprintln(os.Stderr, "eval:", err)
		os.Exit(1)
	}
	fmt.Printf("%.17g\n", v)
}

func printSummary(digest, seed string, seedValue uint64, st sampler.Summary) {
	fmt.Printf("digest=%s seed=%q seed_value=%d\n", digest, seed, seedValue)
	fmt.Printf("points=%d min=%.6f max=%.6f mean=%.6f above_sea=%.4f\n", st.Count, st.Min, st.Max, st.Mean, st.AboveSea)
}
