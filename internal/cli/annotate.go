package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/anchor"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON       string
	outMD         string
	timeout       time.Duration
	userAgent     string
	maxBytes      int64
	noRobots      bool
	noMet         bool
	scanLimit     int
	yearPadding   int
	providerLimit int
	httpProxy     string
	httpsProxy    string
	llmEnabled    bool
	llmModel      string
	textFile      string
	subject       string
	annotatedOut  bool
)

// annotateCmd represents the annotate command
var annotateCmd = &cobra.Command{
	Use:   "annotate <url>",
	Short: "Annotate a single article with place, date, and artwork markers",
	Long: `Annotate scans one article to:
- Extract (location, date-range) candidate pairs from the text
- Anchor each pair to its first mention in the article body
- Resolve period artworks from The Met and Europeana
- Generate JSON and Markdown reports

Example:
  wikiart annotate https://en.wikipedia.org/wiki/Battle_of_Verdun
  wikiart annotate https://example.com/article --json report.json --md report.md
  wikiart annotate --text article.txt --subject "Siege of Paris"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnnotate,
}

func init() {
	rootCmd.AddCommand(annotateCmd)

	// Output flags
	annotateCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	annotateCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	annotateCmd.Flags().BoolVar(&annotatedOut, "annotated", false, "print the annotated article text to stdout")

	// Input flags
	annotateCmd.Flags().StringVar(&textFile, "text", "", "annotate a local text file instead of a URL")
	annotateCmd.Flags().StringVar(&subject, "subject", "", "article subject (defaults to the URL slug)")

	// HTTP flags
	annotateCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall annotation timeout")
	annotateCmd.Flags().StringVar(&userAgent, "ua", "wiki-art-enhance/0.1 (+https://github.com/diegovillafuerte1/wiki-art-enhance)", "HTTP User-Agent")
	annotateCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read")
	annotateCmd.Flags().BoolVar(&noRobots, "no-robots", false, "skip robots.txt checks")
	annotateCmd.Flags().StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL (overrides HTTP_PROXY env var)")
	annotateCmd.Flags().StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL (overrides HTTPS_PROXY env var)")

	// Scan flags
	annotateCmd.Flags().IntVar(&scanLimit, "scan-limit", 12000, "max characters of article text to scan")
	annotateCmd.Flags().IntVar(&yearPadding, "year-padding", 20, "years of padding around a candidate date when searching providers")
	annotateCmd.Flags().IntVar(&providerLimit, "provider-limit", 20, "max artworks requested per provider")
	annotateCmd.Flags().BoolVar(&noMet, "no-met", false, "disable The Met provider")

	// LLM flags
	annotateCmd.Flags().BoolVar(&llmEnabled, "llm", false, "enable LLM candidate extraction")
	annotateCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runAnnotate(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && textFile == "" {
		return fmt.Errorf("either a URL argument or --text is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	p := pipeline.NewPipeline(cfg, logger)

	var (
		report *model.Report
		doc    *anchor.Document
	)

	if textFile != "" {
		data, err := os.ReadFile(textFile)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		name := subject
		if name == "" {
			name = textFile
		}
		r, d := p.AnnotateText(ctx, string(data), name)
		report, doc = r, d
	} else {
		url := args[0]
		if verbose {
			fmt.Fprintf(os.Stderr, "Annotating: %s\n\n", url)
		}
		r, d, err := p.AnnotateURL(ctx, url)
		if err != nil {
			return fmt.Errorf("annotate failed: %w", err)
		}
		if subject != "" {
			r.Subject = subject
		}
		report, doc = r, d
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Found %d candidates\n", report.Stats.Candidates)
		fmt.Fprintf(os.Stderr, "✓ Anchored %d markers\n", report.Stats.Anchored)
		fmt.Fprintf(os.Stderr, "✓ Resolved %d artworks\n", report.Stats.Artworks)
		fmt.Fprintln(os.Stderr)
	}

	if err := pipeline.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if cfg.Output.AnnotatedText {
		pipeline.RenderAnnotated(doc)
	}

	pipeline.RenderSummary(report)
	return nil
}

// buildConfig assembles the runtime configuration from defaults, flags,
// and credential environment variables.
func buildConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	cfg.HTTP.Timeout = timeout
	cfg.HTTP.UserAgent = userAgent
	cfg.HTTP.MaxBodyBytes = maxBytes
	cfg.HTTP.RespectRobots = !noRobots
	cfg.HTTP.HTTPProxy = httpProxy
	cfg.HTTP.HTTPSProxy = httpsProxy
	cfg.Scan.Limit = scanLimit
	cfg.Providers.MetEnabled = !noMet
	cfg.Providers.YearPadding = yearPadding
	cfg.Providers.PerProviderLimit = providerLimit
	cfg.Output.Verbose = verbose
	cfg.Output.AnnotatedText = annotatedOut

	// Credentials come from the environment only, never from flags.
	cfg.Providers.EuropeanaAPIKey = os.Getenv("EUROPEANA_API_KEY")

	if llmEnabled {
		cfg.LLM.Enabled = true
		cfg.LLM.Model = llmModel
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	return cfg, nil
}
