package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quarterglass/earnviz/analysis"
	"github.com/quarterglass/earnviz/analysis/provider"
	"github.com/quarterglass/earnviz/logger"
	"github.com/quarterglass/earnviz/report"
)

func main() {
	_ = godotenv.Load()

	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	cache := analysis.NewCache(cfg.CacheDir)
	if cfg.ClearCache {
		if err := cache.Clear(); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(2)
		}
		// -clear-cache with no transcript is a standalone maintenance run.
		if cfg.InPath == "" {
			return
		}
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "missing OPENAI_API_KEY (or pass -api-key)")
		os.Exit(2)
	}

	if cfg.NoCache {
		cache = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.New()

	pipe := &analysis.Pipeline{
		Oracle: analysis.NewOracle(provider.New(apiKey), cfg.Model),
		Cache:  cache,
		Log:    log,
	}
	params := analysis.Params{
		TranscriptPath: cfg.InPath,
		Mode:           cfg.Mode,
		Source:         cfg.topicSource(),
		Model:          cfg.Model,
		WordsPerMinute: cfg.WordsPerMinute,
		MaxTopics:      cfg.MaxTopics,
		MaxChunkWords:  cfg.MaxChunkWords,
	}

	res, text, err := pipe.Run(ctx, params)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNoContent):
			fmt.Fprintf(os.Stderr, "nothing to analyze: %v\n", err)
		case errors.Is(err, analysis.ErrEmptyResult):
			fmt.Fprintln(os.Stderr, "no topic records produced from transcript")
		default:
			fmt.Fprintln(os.Stderr, err.Error())
		}
		os.Exit(1)
	}

	if err := analysis.WriteResults(cfg.OutPath, res, cfg.Pretty); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	reportWritten := false
	if cfg.ReportPath != "" {
		title := fmt.Sprintf("Earnings Call Topics & Sentiment: %s", filepath.Base(cfg.InPath))
		err := report.WriteHTML(cfg.ReportPath, res, report.Options{
			Title:          title,
			TranscriptText: text,
		})
		switch {
		case errors.Is(err, report.ErrNoData):
			log.Warn("all topics have zero size, skipping report")
		case err != nil:
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		default:
			reportWritten = true
		}
	}

	if cfg.WorkbookPath != "" {
		if err := report.WriteWorkbook(cfg.WorkbookPath, res); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
	}

	manifest := analysis.RunManifest{
		RunID:          analysis.NewRunID(),
		GeneratedAt:    time.Now().UTC(),
		TranscriptPath: cfg.InPath,
		Model:          cfg.Model,
		Mode:           cfg.Mode,
		WordsPerMinute: cfg.WordsPerMinute,
		MaxTopics:      cfg.MaxTopics,
		Topics:         params.Source.Labels,
		ResultsPath:    cfg.OutPath,
		TopicCount:     len(res),
		TotalMinutes:   res.TotalMinutes(),
		TotalWords:     res.TotalWords(),
	}
	if reportWritten {
		manifest.ReportPath = cfg.ReportPath
	}
	if cfg.WorkbookPath != "" {
		manifest.WorkbookPath = cfg.WorkbookPath
	}
	manifestPath := filepath.Join(filepath.Dir(cfg.OutPath), "run_manifest.json")
	if err := analysis.WriteManifest(manifestPath, manifest); err != nil {
		log.WithError(err).Warn("writing run manifest failed")
	}

	printSummary(os.Stdout, res)
	fmt.Printf("Results saved to %s\n", cfg.OutPath)
	if reportWritten {
		fmt.Printf("Report saved to %s\n", cfg.ReportPath)
	}
}

func printSummary(w *os.File, res analysis.AnalysisResult) {
	fmt.Fprintf(w, "%d topics (%.1f min, %d words):\n", len(res), res.TotalMinutes(), res.TotalWords())
	for _, r := range res {
		fmt.Fprintf(w, "  %-30s  %+.2f  %6.1f min  %6d words\n",
			r.Topic, r.Sentiment, r.Minutes, r.WordCount)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)
	fs.StringVar(&cfg.InPath, "in", "", "Path to the transcript text file")
	fs.StringVar(&cfg.OutPath, "out", cfg.OutPath, "Output path for the results JSON array")
	fs.StringVar(&cfg.ReportPath, "report", cfg.ReportPath, "Output path for the HTML treemap report (empty disables)")
	fs.StringVar(&cfg.WorkbookPath, "xlsx", "", "Optional output path for an xlsx workbook of the results")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "OpenAI model to use (e.g. gpt-4o-mini)")
	fs.StringVar(&cfg.Mode, "mode", cfg.Mode, "Analysis mode: transcript (one call) or chunks (one call per chunk)")
	fs.StringVar(&cfg.Topics, "topics", "", "Comma-separated topic labels to analyze (transcript mode only)")
	fs.BoolVar(&cfg.PresetTopics, "preset-topics", false, "Use the built-in earnings-call topic set (transcript mode only)")
	fs.IntVar(&cfg.WordsPerMinute, "wpm", cfg.WordsPerMinute, "Speaking rate used to convert words to minutes")
	fs.IntVar(&cfg.MaxTopics, "max-topics", cfg.MaxTopics, "Max topics kept after aggregation (0 disables the cap)")
	fs.IntVar(&cfg.MaxChunkWords, "max-words", cfg.MaxChunkWords, "Max words per chunk in chunks mode")
	fs.StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "Directory for cached analysis results")
	fs.BoolVar(&cfg.NoCache, "no-cache", false, "Bypass the result cache for this run")
	fs.BoolVar(&cfg.ClearCache, "clear-cache", false, "Delete all cached results before running (alone: just clear and exit)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (overrides OPENAI_API_KEY env var)")
	fs.BoolVar(&cfg.Pretty, "pretty", false, "Pretty-print the results JSON")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.InPath = filepath.Clean(cfg.InPath)
	if cfg.InPath == "." {
		cfg.InPath = ""
	}
	cfg.OutPath = filepath.Clean(cfg.OutPath)
	if cfg.ReportPath != "" {
		cfg.ReportPath = filepath.Clean(cfg.ReportPath)
	}
	return cfg, nil
}
