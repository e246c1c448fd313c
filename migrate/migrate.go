// Package migrate runs the fixed legacy export plan and writes one
// transactional load script.
package migrate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clarita-9850/dmxload/converters"
	"github.com/clarita-9850/dmxload/converters/dmx"
	"github.com/clarita-9850/dmxload/mapping"
	"github.com/clarita-9850/dmxload/sqlgen"

	"github.com/google/uuid"
)

// Options configures a run.
type Options struct {
	DMXDir   string           // directory holding the four legacy exports
	Progress io.Writer        // operator progress lines; nil discards them
	Verbose  bool             // log each step
	Now      func() time.Time // clock for the header; defaults to time.Now
	RunID    string           // stamped into the header; generated when empty
}

// TableSummary reports one source/target pair.
type TableSummary struct {
	Source string
	Target string
	mapping.Result
}

// Summary reports a run. Legacy holds every parsed export in plan order,
// labelled with its file name when the export does not name itself.
type Summary struct {
	RunID       string
	GeneratedAt time.Time
	Tables      []TableSummary
	Legacy      []*dmx.LegacyTable
}

// Emitted returns the number of business rows emitted across all tables.
func (s *Summary) Emitted() int {
	n := 0
	for _, t := range s.Tables {
		n += t.Emitted
	}
	return n
}

// Run reads each export in plan order and writes the load script to w.
// A source that fails to parse stops the run: what was written stays in w,
// and the COMMIT footer is never written.
func Run(ctx context.Context, opts Options, w io.Writer) (*Summary, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}

	sum := &Summary{RunID: opts.RunID, GeneratedAt: now()}
	if sum.RunID == "" {
		sum.RunID = uuid.NewString()
	}

	out := sqlgen.NewWriter(w)
	out.Line(sqlgen.Banner(
		"INITIAL DATA LOAD FOR IHSS MODERNIZED SCHEMA",
		"Generated from Curam DMX files",
		"Generated: "+sum.GeneratedAt.Format(time.RFC3339),
		"Run: "+sum.RunID,
	))
	out.Line("")
	out.Line("-- Prerequisites: Run ihss_postgresql_complete_ddl.sql first")
	out.Line("")
	out.Line("BEGIN;")
	if err := out.Err(); err != nil {
		return sum, err
	}

	for _, g := range mapping.Generators() {
		target := g.Target()
		path := filepath.Join(opts.DMXDir, target.Source)

		fmt.Fprintf(progress, "Processing %s...\n", target.Source)
		if opts.Verbose {
			log.Printf("[DMXLOAD] Parsing %s", path)
		}

		table, err := dmx.ParseFile(path)
		if err != nil {
			return sum, err
		}
		if table.Name == "" {
			labeled := *table
			labeled.Name = strings.TrimSuffix(target.Source, filepath.Ext(target.Source))
			table = &labeled
		}
		sum.Legacy = append(sum.Legacy, table)

		res, err := mapping.Generate(ctx, w, g, table.Rows)
		sum.Tables = append(sum.Tables, TableSummary{Source: target.Source, Target: target.Table, Result: res})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return sum, fmt.Errorf("%w: %v", converters.ErrInterrupted, err)
			}
			return sum, fmt.Errorf("failed to generate %s: %w", target.Table, err)
		}

		fmt.Fprintf(progress, "  Generated %d %s inserts\n", res.Emitted, strings.TrimPrefix(target.Table, mapping.Schema+"."))
		if opts.Verbose && res.Skipped > 0 {
			log.Printf("[DMXLOAD] Skipped %d of %d rows from %s", res.Skipped, res.Read, target.Source)
		}
	}

	out.Line("")
	out.Line("")
	out.Line("COMMIT;")
	out.Line("")
	out.Line(sqlgen.Banner("DATA LOAD COMPLETE"))
	return sum, out.Err()
}

// RunFile runs the plan into the file at outputPath. The file is flushed and
// closed on every path, so a failed run leaves its partial output for diagnosis.
func RunFile(ctx context.Context, opts Options, outputPath string) (sum *Summary, err error) {
	if dir := filepath.Dir(outputPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	bw := bufio.NewWriterSize(f, 65536)
	defer func() {
		if ferr := bw.Flush(); ferr != nil && err == nil {
			err = fmt.Errorf("failed to flush output: %w", ferr)
		}
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	return Run(ctx, opts, bw)
}
