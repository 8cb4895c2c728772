package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/artcache"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/pipeline"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/providers"
	"github.com/spf13/cobra"
)

var (
	galleryYear    int
	galleryEndYear int
	galleryLimit   int
	galleryTimeout time.Duration
)

// galleryCmd represents the gallery command
var galleryCmd = &cobra.Command{
	Use:   "gallery <location>",
	Short: "Query artwork providers directly for a place and period",
	Long: `Gallery bypasses article scanning and queries the providers directly
for one (location, date-range) pair.

Example:
  wikiart gallery Paris --year 1889
  wikiart gallery "Vienna" --year 1900 --end-year 1918 --limit 10`,
	Args: cobra.ExactArgs(1),
	RunE: runGallery,
}

func init() {
	rootCmd.AddCommand(galleryCmd)

	galleryCmd.Flags().IntVar(&galleryYear, "year", 0, "start year (required)")
	galleryCmd.Flags().IntVar(&galleryEndYear, "end-year", 0, "end year (defaults to start year)")
	galleryCmd.Flags().IntVar(&galleryLimit, "limit", 20, "max artworks per provider")
	galleryCmd.Flags().DurationVar(&galleryTimeout, "timeout", 30*time.Second, "query timeout")
	_ = galleryCmd.MarkFlagRequired("year")
}

func runGallery(cmd *cobra.Command, args []string) error {
	location := args[0]
	endYear := galleryEndYear
	if endYear == 0 {
		endYear = galleryYear
	}

	ctx, cancel := context.WithTimeout(context.Background(), galleryTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	cfg.Providers.EuropeanaAPIKey = os.Getenv("EUROPEANA_API_KEY")
	logger := newLogger()

	broker := providers.NewBroker(cfg.HTTP, cfg.RateLimit)
	var list []providers.Provider
	list = append(list, providers.NewMetProvider(
		broker, cfg.Providers.MetBaseURL, cfg.Providers.YearPadding, logger))
	if key := cfg.Providers.EuropeanaAPIKey; key != "" {
		eu, err := providers.NewEuropeanaProvider(
			broker, cfg.Providers.EuropeanaBaseURL, key, cfg.Providers.YearPadding, logger)
		if err == nil {
			list = append(list, eu)
		}
	}

	resolver := providers.NewResolver(list, artcache.New(cfg.Providers.CacheTTL), logger)
	r := model.NewDateRange(galleryYear, endYear)
	candidate := model.Candidate{Location: location, Range: &r}

	records, err := resolver.Resolve(ctx, candidate, galleryLimit)
	if err != nil {
		return fmt.Errorf("all providers failed: %w", err)
	}

	fmt.Printf("Artworks near %s, %s:\n\n", location, r.String())
	pipeline.RenderGallery(records)
	return nil
}
