package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/finsafe/statement-anonymizer/internal/api"
	"github.com/finsafe/statement-anonymizer/internal/categorize"
	"github.com/finsafe/statement-anonymizer/internal/config"
	"github.com/finsafe/statement-anonymizer/internal/dialect"
	"github.com/finsafe/statement-anonymizer/internal/dialectstore"
	"github.com/finsafe/statement-anonymizer/internal/engine"
	"github.com/finsafe/statement-anonymizer/internal/extractor"
	"github.com/finsafe/statement-anonymizer/internal/format"
	"github.com/finsafe/statement-anonymizer/internal/logger"
	"github.com/finsafe/statement-anonymizer/internal/models"
)

const version = "1.0.0"

func main() {
	configFlag := flag.String("config", "", "Path to YAML run configuration")
	encodingFlag := flag.String("encoding", "", "Output encoding: tabular, delimited, markdown, narrative")
	detailFlag := flag.String("detail", "", "Detail level: minimal, standard, detailed, debug")
	maxRowsFlag := flag.Int("max-rows", 0, "Limit output to the first N transactions (0 = all)")
	highlightFlag := flag.String("highlight", "", "Highlight cells containing this term")
	preflightFlag := flag.Bool("preflight", false, "Dry-run a sample and report planned redactions without emitting transactions")
	sampleFlag := flag.Int("sample", 0, "Preflight sample size (default 25)")
	termsFlag := flag.String("terms", "", "Comma-separated extra terms to redact")
	storeFlag := flag.String("store", defaultStorePath(), "Dialect cache file ('' disables)")
	outputFlag := flag.String("output", "", "Write output to this file instead of stdout")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	addrFlag := flag.String("addr", "127.0.0.1:8080", "Listen address for -serve")
	logLevelFlag := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	versionFlag := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `Statement Anonymizer

Removes personal data from bank statement exports (CSV, PDF, XLSX) and
produces a privacy-safe transaction listing with merchants normalized
and spending categorized. Deterministic: the same input always produces
the same output.

Usage:
  statement-anonymizer [flags] <statement.csv> [statement2.pdf ...]
  statement-anonymizer -serve

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Anonymize a CSV export, tabular output
  statement-anonymizer statement.csv

  # Preview what would be redacted without emitting transactions
  statement-anonymizer -preflight statement.csv

  # Markdown output with full diagnostics, custom redaction terms
  statement-anonymizer -encoding=markdown -detail=debug -terms="Acme Corp" statement.csv

  # Monthly prose summary
  statement-anonymizer -encoding=narrative statement.csv

  # Run the local web API
  statement-anonymizer -serve -addr=127.0.0.1:8080
`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("statement-anonymizer v%s\n", version)
		os.Exit(0)
	}

	log := logger.New(*logLevelFlag)

	cfg := config.Default()
	if *configFlag != "" {
		loaded, err := config.Load(*configFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("loading configuration")
		}
		cfg = loaded
	}

	opts := cfg.SanitizeOptions()
	if *termsFlag != "" {
		for _, term := range strings.Split(*termsFlag, ",") {
			if term = strings.TrimSpace(term); term != "" {
				opts.CustomTerms = append(opts.CustomTerms, term)
			}
		}
	}

	pipeline := engine.NewWithCategorizer(buildCategorizer(cfg, log))

	if *serveFlag {
		server := api.NewServer(pipeline, opts, log)
		log.Info().Str("addr", *addrFlag).Msg("starting HTTP API")
		if err := server.App().Listen(*addrFlag); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	renderOpts := format.Options{
		Encoding:      format.Encoding(firstNonEmpty(*encodingFlag, cfg.Output.Encoding)),
		Detail:        format.DetailLevel(firstNonEmpty(*detailFlag, cfg.Output.Detail)),
		MaxRows:       *maxRowsFlag,
		HighlightTerm: *highlightFlag,
	}
	if renderOpts.MaxRows == 0 {
		renderOpts.MaxRows = cfg.Output.MaxRows
	}

	var store *dialectstore.Store
	if *storeFlag != "" {
		s, err := dialectstore.Open(*storeFlag)
		if err != nil {
			log.Warn().Err(err).Msg("dialect cache unavailable, continuing without it")
		} else {
			store = s
		}
	}

	exitCode := 0
	for _, inputPath := range flag.Args() {
		if err := runFile(inputPath, pipeline, opts, renderOpts, store, cfg, *preflightFlag, *sampleFlag, *outputFlag, log); err != nil {
			log.Error().Err(err).Str("file", inputPath).Msg("processing failed")
			exitCode = 1
		}
	}
	os.Exit(exitCode)
}

func runFile(inputPath string, pipeline *engine.Pipeline, opts models.Options, renderOpts format.Options, store *dialectstore.Store, cfg *config.Config, preflight bool, sampleSize int, outputPath string, log zerolog.Logger) error {
	rows, err := extractor.FromFile(inputPath)
	if err != nil {
		return err
	}

	fingerprint := ""
	if store != nil && len(rows) > 0 {
		fingerprint = dialect.Fingerprint(rows[0])
		if hints, ok := store.Lookup(fingerprint); ok {
			log.Debug().Str("fingerprint", fingerprint).Msg("using remembered dialect")
			merged := make(map[int]models.ColumnRole, len(hints)+len(opts.RoleHints))
			for k, v := range hints {
				merged[k] = v
			}
			for k, v := range opts.RoleHints {
				merged[k] = v
			}
			opts.RoleHints = merged
		}
	}

	if preflight {
		if sampleSize <= 0 {
			sampleSize = cfg.Preflight.SampleSize
		}
		report, err := pipeline.PreflightRows(rows, models.PreflightOptions{Options: opts, SampleSize: sampleSize})
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		return emit(outputPath, string(data)+"\n")
	}

	result, err := pipeline.ProcessRows(rows, opts)
	if err != nil {
		return err
	}

	if store != nil && fingerprint != "" {
		if err := store.Remember(fingerprint, result.Columns); err != nil {
			log.Warn().Err(err).Msg("could not persist dialect cache")
		}
	}

	log.Info().
		Str("run_id", result.RunID).
		Str("file", filepath.Base(inputPath)).
		Int("transactions", len(result.Transactions)).
		Int("redactions", result.Report.Total()).
		Str("strategy", string(result.Decision.Strategy)).
		Msg("statement processed")
	for reason, n := range result.Skipped {
		log.Debug().Str("reason", reason).Int("rows", n).Msg("rows skipped")
	}

	text, err := format.Render(result.Transactions, renderOpts)
	if err != nil {
		return err
	}
	return emit(outputPath, text)
}

func emit(outputPath, text string) error {
	if outputPath == "" {
		_, err := os.Stdout.WriteString(text)
		return err
	}
	return os.WriteFile(outputPath, []byte(text), 0o644)
}

func buildCategorizer(cfg *config.Config, log zerolog.Logger) *categorize.Categorizer {
	if len(cfg.Categories) == 0 {
		return categorize.New()
	}
	custom := make([]categorize.Rule, 0, len(cfg.Categories))
	for _, r := range cfg.Categories {
		re, err := regexp.Compile(`(?i)` + r.Pattern)
		if err != nil {
			log.Warn().Err(err).Str("pattern", r.Pattern).Msg("skipping invalid category rule")
			continue
		}
		custom = append(custom, categorize.Rule{Pattern: re, Category: r.Category, Confidence: r.Confidence})
	}
	return categorize.NewWithRules(custom)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func defaultStorePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "statement-anonymizer", "dialects.json")
}
