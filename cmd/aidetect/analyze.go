package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	detector "github.com/Aryangaikwadsql/ai-image-detector"
	"github.com/Aryangaikwadsql/ai-image-detector/client"
	"github.com/Aryangaikwadsql/ai-image-detector/config"
)

// FileResult is one line of analyze output.
type FileResult struct {
	File     string         `json:"file"`
	Score    int            `json:"score"`
	Label    detector.Label `json:"label,omitempty"`
	Reason   string         `json:"reason,omitempty"`
	Source   string         `json:"source,omitempty"`
	Fallback bool           `json:"fallback,omitempty"`
	Cached   bool           `json:"cached,omitempty"`
	Error    string         `json:"error,omitempty"`
}

var errSomeFailed = errors.New("one or more images could not be analyzed")

func runAnalyze(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("analyze", pflag.ContinueOnError)
	fs.SetOutput(stderr)

	envFile := fs.String("env-file", ".env", "Optional .env file to load")
	serverURL := fs.StringP("server", "s", "", "Send images to a running aidetect server instead of analyzing locally")
	chain := fs.String("chain", "", "Provider chain for local analysis")
	concurrency := fs.IntP("concurrency", "c", detector.DefaultConcurrency, "Images analyzed in parallel")
	noHeuristic := fs.Bool("no-heuristic", false, "Fail instead of using the heuristic fallback")
	jsonOutput := fs.Bool("json", false, "Output results as JSON")
	verbose := fs.BoolP("verbose", "V", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return fmt.Errorf("at least one image file is required")
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	if *chain != "" {
		cfg.Chain = *chain
	}
	if *noHeuristic {
		cfg.Heuristic = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level := zapcore.WarnLevel
	if *verbose {
		level = zapcore.DebugLevel
	}
	logger := newLogger(stderr, level)
	defer func() { _ = logger.Sync() }()

	files := fs.Args()
	start := time.Now()

	var results []FileResult
	if *serverURL != "" {
		results = analyzeRemote(ctx, client.New(*serverURL, nil), files, cfg.MaxBytes(), *concurrency)
	} else {
		providers, err := buildProviders(cfg, logger)
		if err != nil {
			return err
		}
		analyzer := detector.NewAnalyzer(providers,
			detector.WithLogger(logger),
			detector.WithMaxBytes(cfg.MaxBytes()),
			detector.WithMaxDimension(cfg.MaxDimension),
			detector.WithProviderTimeout(cfg.ProviderTimeout),
			detector.WithHeuristic(cfg.Heuristic),
		)
		results = analyzeLocal(ctx, analyzer, files, *concurrency)
	}

	if *jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printResults(stdout, results)
		fmt.Fprintf(stderr, "\nDone in %v\n", time.Since(start).Round(time.Millisecond))
	}

	for _, r := range results {
		if r.Error != "" {
			return errSomeFailed
		}
	}
	return nil
}

func analyzeLocal(ctx context.Context, analyzer *detector.Analyzer, files []string, concurrency int) []FileResult {
	items := make([]detector.BatchItem, 0, len(files))
	results := make([]FileResult, len(files))
	index := make([]int, 0, len(files))

	for i, f := range files {
		results[i].File = f
		data, err := os.ReadFile(f) // #nosec G304 - CLI reads user-specified files
		if err != nil {
			results[i].Error = err.Error()
			continue
		}
		items = append(items, detector.BatchItem{Name: f, Data: data})
		index = append(index, i)
	}

	for j, br := range analyzer.AnalyzeBatch(ctx, items, concurrency) {
		i := index[j]
		if br.Err != nil {
			results[i].Error = br.Err.Error()
			continue
		}
		fillResult(&results[i], br.Result)
	}
	return results
}

// analyzeRemote validates each file locally, so obviously bad uploads never
// leave the machine, then posts the rest to the server.
func analyzeRemote(ctx context.Context, c *client.Client, files []string, maxBytes int64, concurrency int) []FileResult {
	if concurrency <= 0 {
		concurrency = detector.DefaultConcurrency
	}
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, f := range files {
		results[i].File = f
		g.Go(func() error {
			data, err := os.ReadFile(f) // #nosec G304 - CLI reads user-specified files
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			if _, err := detector.ValidateImage(data, "", maxBytes); err != nil {
				results[i].Error = err.Error()
				return nil
			}
			resp, err := c.Analyze(gctx, f, data)
			if err != nil {
				results[i].Error = err.Error()
				return nil
			}
			results[i].Score = resp.Score
			results[i].Label = resp.Label
			results[i].Reason = resp.Reason
			results[i].Source = resp.Source
			results[i].Fallback = resp.Fallback
			results[i].Cached = resp.Cached
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func fillResult(fr *FileResult, r *detector.Result) {
	fr.Score = r.Score
	fr.Label = r.Label
	fr.Reason = r.Reason
	fr.Source = r.Source
	fr.Fallback = r.Fallback
	fr.Cached = r.Cached
}

func printResults(w io.Writer, results []FileResult) {
	for _, r := range results {
		name := filepath.Base(r.File)
		if r.Error != "" {
			fmt.Fprintf(w, "%s: error: %s\n", name, r.Error)
			continue
		}
		fmt.Fprintf(w, "%s: %3d%%  %-14s  [%s]\n", name, r.Score, r.Label, r.Source)
		fmt.Fprintf(w, "    %s\n", r.Reason)
	}
}
