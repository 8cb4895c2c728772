package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/pipeline"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Annotate multiple article URLs from a file in parallel",
	Long: `Batch annotates multiple articles concurrently:
- Read URLs from input file (one per line)
- Process URLs in parallel with configurable worker count
- Generate individual JSON reports for each article

Example:
  wikiart batch urls.txt
  wikiart batch urls.txt --concurrency 8 --output-dir ./reports`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./wikiart-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().DurationVar(&timeout, "annotate-timeout", 30*time.Second, "timeout for individual articles")
	batchCmd.Flags().StringVar(&userAgent, "ua", "wiki-art-enhance/0.1 (+https://github.com/diegovillafuerte1/wiki-art-enhance)", "HTTP User-Agent")
	batchCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	batchCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	batchCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.BatchWorkers = concurrency

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	logger := newLogger()
	p := pipeline.NewPipeline(cfg, logger)
	processor := worker.NewBatchProcessor(p, concurrency)

	start := time.Now()
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}

	succeeded, failed := 0, 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.URL, r.Error)
			continue
		}
		succeeded++

		jsonPath := filepath.Join(outputDir, reportFileName(r.URL))
		if err := pipeline.RenderReport(r.Report, jsonPath, "", verbose); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: render: %v\n", r.URL, err)
			continue
		}
		fmt.Fprintf(os.Stderr, "✓ %s (%d artworks)\n", r.URL, r.Report.Stats.Artworks)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Processed:    %d URLs in %v\n", len(results), time.Since(start).Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  Succeeded:    %d\n", succeeded)
	fmt.Fprintf(os.Stderr, "  Failed:       %d\n", failed)
	fmt.Fprintf(os.Stderr, "\n")

	if failed > 0 && succeeded == 0 {
		return fmt.Errorf("all %d URLs failed", failed)
	}
	return nil
}

// reportFileName derives a filesystem-safe report name from a URL.
func reportFileName(url string) string {
	name := url
	if i := strings.Index(name, "://"); i >= 0 {
		name = name[i+3:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	s := b.String()
	if len(s) > 120 {
		s = s[:120]
	}
	return s + ".json"
}
