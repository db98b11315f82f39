// Command fredread downloads FRED series once and writes the joined table.
//
//	fredread -series GDP,UNRATE -start 2010-01-01 -out macro.xlsx
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"

	"github.com/rickgao/fred-data/internal/api"
	"github.com/rickgao/fred-data/internal/config"
	"github.com/rickgao/fred-data/internal/fred"
	"github.com/rickgao/fred-data/internal/frame"
	"github.com/rickgao/fred-data/internal/logging"
	"github.com/rickgao/fred-data/internal/telemetry"
	"github.com/rickgao/fred-data/internal/version"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "fredread: load .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "fredread: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fredread", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to config file (optional)")
	seriesFlag := fs.String("series", "", "comma-separated FRED series ids; trailing arguments are added")
	start := fs.String("start", "", "first date to keep, YYYY-MM-DD")
	end := fs.String("end", "", "last date to keep, YYYY-MM-DD")
	concurrency := fs.Int("concurrency", 0, "series fetched at once (0 = config)")
	out := fs.String("out", "", "output file, .csv or .xlsx (default: CSV on stdout)")
	describe := fs.Bool("describe", false, "print summary statistics instead of the table")
	traceSpans := fs.Bool("trace", false, "write fetch spans to stderr")
	showVersion := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return nil
	}

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		return err
	}

	if series := splitSeries(*seriesFlag, fs.Args()); len(series) > 0 {
		cfg.Fetch.Series = series
	}
	if *start != "" {
		cfg.Fetch.Start = *start
	}
	if *end != "" {
		cfg.Fetch.End = *end
	}
	if *concurrency > 0 {
		cfg.Fetch.Concurrency = *concurrency
	}
	if *traceSpans {
		cfg.Tracing.Exporter = telemetry.ExporterStdout
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(stderr, cfg.Logging)

	shutdown, err := telemetry.Setup(stderr, "fredread", cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("failed to flush spans", "error", err)
		}
	}()

	rng, err := cfg.Fetch.Range()
	if err != nil {
		return err
	}

	client := api.NewClient(
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		api.WithUserAgent(version.UserAgent(cfg.API.UserAgent)),
	)
	reader := fred.NewReader(client,
		fred.WithBaseURL(cfg.API.BaseURL),
		fred.WithConcurrency(cfg.Fetch.Concurrency),
		fred.WithLogger(logger),
	)

	tbl, err := reader.Read(ctx, rng, cfg.Fetch.Series...)
	if err != nil {
		return err
	}

	logger.Debug("read table", "series", tbl.Columns, "rows", tbl.Len())

	if *describe {
		return writeSummary(stdout, tbl.Describe())
	}
	if *out == "" {
		return tbl.WriteCSV(stdout)
	}
	return writeFile(*out, tbl)
}

// splitSeries merges the -series list with positional ids, preserving order.
func splitSeries(flagValue string, rest []string) []string {
	var ids []string
	for _, id := range strings.Split(flagValue, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	for _, id := range rest {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func writeFile(path string, tbl *frame.Table) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		return fmt.Errorf("unsupported output %q: want .csv or .xlsx", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()

	if ext == ".xlsx" {
		return tbl.WriteXLSX(f, "")
	}
	return tbl.WriteCSV(f)
}

func writeSummary(w io.Writer, summaries []frame.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "series\tcount\tmean\tstd\tmin\tmax\t")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%.4g\t%.4g\t%.4g\t%.4g\t\n", s.Column, s.Count, s.Mean, s.Std, s.Min, s.Max)
	}
	return tw.Flush()
}
