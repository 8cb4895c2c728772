package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/anchor"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

// Annotator scans one article URL and produces a report.
type Annotator interface {
	AnnotateURL(ctx context.Context, url string) (*model.Report, *anchor.Document, error)
}

// AnnotateJob is a single-URL annotation job.
type AnnotateJob struct {
	URL       string
	Annotator Annotator
}

// Execute runs the annotation and wraps the outcome.
func (j *AnnotateJob) Execute(ctx context.Context) Result {
	report, doc, err := j.Annotator.AnnotateURL(ctx, j.URL)
	return &AnnotateResult{
		URL:      j.URL,
		Report:   report,
		Document: doc,
		Error:    err,
	}
}

// AnnotateResult is the outcome of one annotation job.
type AnnotateResult struct {
	URL      string
	Report   *model.Report
	Document *anchor.Document
	Error    error
}

// GetError returns the job error, if any.
func (r *AnnotateResult) GetError() error {
	return r.Error
}

// BatchProcessor annotates multiple article URLs concurrently.
type BatchProcessor struct {
	annotator   Annotator
	concurrency int
}

// NewBatchProcessor creates a batch processor.
func NewBatchProcessor(annotator Annotator, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		annotator:   annotator,
		concurrency: concurrency,
	}
}

// ProcessURLs annotates the given URLs concurrently.
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*AnnotateResult {
	if len(urls) == 0 {
		return []*AnnotateResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, url := range urls {
		pool.Submit(&AnnotateJob{URL: url, Annotator: b.annotator})
	}

	results := pool.Wait()

	annotateResults := make([]*AnnotateResult, len(results))
	for i, result := range results {
		annotateResults[i] = result.(*AnnotateResult)
	}

	return annotateResults
}

// ProcessFile reads URLs from a file and annotates them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*AnnotateResult, error) {
	urls, err := ReadURLsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}

	return b.ProcessURLs(ctx, urls), nil
}

// ReadURLsFromFile reads URLs from a file, one per line. Blank lines and
// #-comments are skipped and duplicates are dropped.
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
