package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"planetgen.ai/internal/persistence/mapstore"
)

func mapsCmd(args []string) {
	fs := flag.NewFlagSet("maps", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	seed := fs.String("seed", "", "only maps for this seed string")
	limit := fs.Int("limit", 50, "max rows")
	_ = fs.Parse(args)

	idx, err := mapstore.OpenIndex(filepath.Join(*dataDir, "index.db"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "open index:", err)
		os.Exit(1)
	}
	defer idx.Close()

	rows, err := idx.List(context.Background(), *seed, *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list:", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DIGEST\tSEED\tSIZE\tSPACING\tCHAOS\tPOINTS\tMIN\tMAX\tCREATED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%q\t%gx%g\t%g\t%g\t%d\t%.4f\t%.4f\t%s\n",
			shortDigest(r.Digest), r.Seed, r.Width, r.Height, r.Spacing, r.Chaos, r.Points, r.Min, r.Max, r.CreatedAt)
	}
	_ = tw.Flush()
}

func showCmd(args []string) {
	fs := flag.NewFlagSet("show", flag.ExitOnError)
	in := fs.String("in", "", "elevation file path")
	csv := fs.Bool("csv", false, "print x,y,elevation rows")
	_ = fs.Parse(args)

	if *in == "" {
		fmt.Fprintln(os.Stderr, "missing -in")
		os.Exit(2)
	}
	h, m, err := mapstore.ReadMap(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	if *csv {
		fmt.Println("x,y,elevation")
		for i, p := range m.Points {
			fmt.Printf("%g,%g,%.17g\n", p.X(), p.Y(), m.Elevation[i])
		}
		return
	}
	fmt.Printf("version=%d size=%gx%g spacing=%g chaos=%g\n", h.Version, h.Options.Width, h.Options.Height, h.Options.Spacing, h.Options.Chaos)
	printSummary(h.Digest, h.Options.Seed, h.SeedValue, m.Stats)
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
