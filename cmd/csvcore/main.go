// Command csvcore loads CSV files and prints what was inferred about them.
//
// Usage:
//
//	csvcore 'data/**/*.csv' extra.csv.gz
//
// Settings come from the environment (and .env); CSVCORE_CONFIG names an
// optional YAML file. Interrupting the command cancels the batch after the
// files already being read.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/JonMunkholm/csvcore/internal/analysis"
	"github.com/JonMunkholm/csvcore/internal/config"
	"github.com/JonMunkholm/csvcore/internal/core"
	"github.com/JonMunkholm/csvcore/internal/ingest"
	"github.com/JonMunkholm/csvcore/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: csvcore PATTERN...")
		os.Exit(2)
	}

	cfg, err := config.LoadFile(os.Getenv("CSVCORE_CONFIG"))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, closeLogs := logging.Setup(cfg.Logging)
	defer closeLogs()

	logger.Debug("configuration loaded", "config", cfg.String())

	coord := ingest.NewFromConfig(cfg, logger)
	defer coord.Close()

	batch, err := coord.Load(context.Background(), os.Args[1:])
	if err != nil {
		logger.Error("failed to start batch", "error", err)
		os.Exit(1)
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("cancelling batch", "batch_id", batch.ID())
		batch.Cancel()
	}()

	for ev := range batch.Events() {
		switch ev.Kind {
		case core.EventProgress:
			fmt.Fprintf(os.Stderr, "[%3d%%] %s\n", ev.Percent(), ev.File)
		case core.EventError:
			fmt.Fprintf(os.Stderr, "error: %s: %s\n", ev.File, ev.Message)
		case core.EventDone:
			if ev.Cancelled {
				fmt.Fprintf(os.Stderr, "cancelled, %d file(s) skipped\n", len(ev.Skipped))
			}
		}
	}
	if err := coord.Commit(batch); err != nil {
		logger.Error("commit failed", "error", err)
	}

	report(os.Stdout, coord.Results())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := coord.Limiter().WaitForDrain(shutdownCtx); err != nil {
		logger.Warn("parses did not finish in time", "error", err, "limiter", coord.Limiter().Status())
	}
}

// report prints one block per file: its read parameters, column kinds and
// summary statistics for numeric columns.
func report(w io.Writer, results []*core.LoadResult) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	for _, r := range results {
		t := r.Table
		fmt.Fprintf(tw, "\n%s\t%d rows\t%d columns\tencoding=%s\tdelimiter=%q\theader=%d\n",
			analysis.SafeSheetName(filepath.Base(r.Path)), t.NumRows(), t.NumCols(), r.Encoding, r.Delimiter, r.HeaderRow)

		stats := analysis.DescribeTable(t)
		for _, col := range t.Columns() {
			s, ok := stats[col.Name]
			if !ok {
				fmt.Fprintf(tw, "  %s\t%s\n", col.Name, col.Kind)
				continue
			}
			fmt.Fprintf(tw, "  %s\t%s\tmean=%.4g\tstd=%.4g\tmin=%.4g\tmax=%.4g\tmissing=%d\n",
				col.Name, col.Kind, s.Mean, s.Std, s.Min, s.Max, s.Missing)
		}

		if n := len(r.Warnings); n > 0 {
			msgs := make([]string, 0, n)
			for _, warn := range r.Warnings {
				msgs = append(msgs, core.MapError(warn).Code)
			}
			slices.Sort(msgs)
			fmt.Fprintf(tw, "  warnings\t%v\n", slices.Compact(msgs))
		}
	}
}
