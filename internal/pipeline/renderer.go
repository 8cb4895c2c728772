package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/diegovillafuerte1/wiki-art-enhance/internal/anchor"
	"github.com/diegovillafuerte1/wiki-art-enhance/internal/model"
)

// RenderReport writes the JSON report and optional Markdown report to the
// given paths. An empty path skips that format.
func RenderReport(report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal report: %w", err)
		}
		if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
			return fmt.Errorf("write JSON report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ JSON report: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := os.WriteFile(mdPath, []byte(RenderMarkdown(report)), 0o644); err != nil {
			return fmt.Errorf("write Markdown report: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Markdown report: %s\n", mdPath)
		}
	}

	return nil
}

// RenderMarkdown renders the report as a human-readable Markdown document.
func RenderMarkdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Art Annotations: %s\n\n", report.Subject)
	if report.SourceURL != "" {
		fmt.Fprintf(&b, "Source: %s\n\n", report.SourceURL)
	}
	fmt.Fprintf(&b, "Scanned: %s\n\n", report.FetchedAt.Format("2006-01-02 15:04:05 UTC"))

	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Metric | Count |\n")
	fmt.Fprintf(&b, "|--------|-------|\n")
	fmt.Fprintf(&b, "| Sentences scanned | %d |\n", report.Stats.Sentences)
	fmt.Fprintf(&b, "| Candidates | %d |\n", report.Stats.Candidates)
	fmt.Fprintf(&b, "| Anchored markers | %d |\n", report.Stats.Anchored)
	fmt.Fprintf(&b, "| Unanchored candidates | %d |\n", report.Stats.Dropped)
	fmt.Fprintf(&b, "| Markers with artwork | %d |\n", report.Stats.WithArt)
	fmt.Fprintf(&b, "| Artworks found | %d |\n\n", report.Stats.Artworks)

	if len(report.Markers) > 0 {
		fmt.Fprintf(&b, "## Markers\n\n")
		for _, m := range report.Markers {
			renderMarkerMarkdown(&b, m)
		}
	}

	return b.String()
}

func renderMarkerMarkdown(b *strings.Builder, m model.MarkerReport) {
	label := m.Location
	if m.Range != nil {
		label = fmt.Sprintf("%s (%s)", m.Location, m.Range.String())
	}
	fmt.Fprintf(b, "### %s %s\n\n", stateBadge(m.State), label)

	if len(m.Artworks) > 0 {
		for _, a := range m.Artworks {
			line := a.Title
			if a.Artist != "" {
				line += ", " + a.Artist
			}
			if a.DateLabel != "" {
				line += fmt.Sprintf(" (%s)", a.DateLabel)
			}
			if a.FullURL != "" {
				fmt.Fprintf(b, "- [%s](%s) · %s\n", line, a.FullURL, a.Source)
			} else {
				fmt.Fprintf(b, "- %s · %s\n", line, a.Source)
			}
		}
		fmt.Fprintln(b)
	}
}

func stateBadge(s model.MarkerState) string {
	switch s {
	case model.MarkerDatedWithArt:
		return "🖼️"
	case model.MarkerDatedPending:
		return "📅"
	default:
		return "📍"
	}
}

// RenderSummary prints a short scan summary to stderr.
func RenderSummary(report *model.Report) {
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Subject:     %s\n", report.Subject)
	fmt.Fprintf(os.Stderr, "  Candidates:  %d (%d anchored, %d dropped)\n",
		report.Stats.Candidates, report.Stats.Anchored, report.Stats.Dropped)
	fmt.Fprintf(os.Stderr, "  With art:    %d markers, %d artworks\n",
		report.Stats.WithArt, report.Stats.Artworks)
	fmt.Fprintf(os.Stderr, "\n")
}

// RenderAnnotated prints the document text with every anchored span wrapped
// in guillemets, to stdout.
func RenderAnnotated(doc *anchor.Document) {
	fmt.Println(doc.Annotated())
}

// RenderGallery prints artwork records as an aligned text table, sorted by
// source then title.
func RenderGallery(records []model.ArtworkRecord) {
	if len(records) == 0 {
		fmt.Println("No artworks found.")
		return
	}

	sorted := make([]model.ArtworkRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Source != sorted[j].Source {
			return sorted[i].Source < sorted[j].Source
		}
		return sorted[i].Title < sorted[j].Title
	})

	fmt.Printf("%-10s %-40s %-24s %-14s\n", "SOURCE", "TITLE", "ARTIST", "DATE")
	for _, a := range sorted {
		fmt.Printf("%-10s %-40s %-24s %-14s\n",
			a.Source, clip(a.Title, 40), clip(a.Artist, 24), clip(a.DateLabel, 14))
	}
	fmt.Printf("\n%d artworks\n", len(sorted))
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
