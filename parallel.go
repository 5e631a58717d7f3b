package detector

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BatchItem is one image in a batch analysis.
type BatchItem struct {
	Name     string // Caller-chosen label, e.g. a file name
	Data     []byte
	MIMEType string // Optional declared type
}

// BatchResult pairs a BatchItem with its outcome.
type BatchResult struct {
	Name   string
	Result *Result
	Err    error
}

// AnalyzeBatch analyzes items concurrently with at most concurrency
// analyses in flight. Results keep the input order. A failing item never
// aborts the rest of the batch.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, items []BatchItem, concurrency int) []BatchResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]BatchResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		results[i].Name = item.Name
		g.Go(func() error {
			res, err := a.Analyze(gctx, item.Data, item.MIMEType)
			results[i].Result = res
			results[i].Err = err
			return nil
		})
	}

	_ = g.Wait() // Per-item errors live in results.

	return results
}
