package export

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"courtscraper/internal/domain"
)

// WriteSummary renders the end-of-run report: per-zip counters, overall
// totals, and the list of scraped courts whose core fields came back
// empty, for manual follow-up.
func WriteSummary(w io.Writer, stats domain.RunStats) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Scraping Summary")
	t.AppendHeader(table.Row{"Zip Code", "URLs", "Unique", "Duplicates", "Scraped", "Complete", "Images"})
	for _, z := range stats.PerZip {
		t.AppendRow(table.Row{
			z.ZipCode, z.URLsFound, z.UniqueURLs, z.DuplicatesSkipped,
			z.CourtsScraped, z.CompleteInfo, z.WithImage,
		})
	}
	t.AppendFooter(table.Row{
		"TOTAL", stats.URLsFound, stats.UniqueURLs, stats.Duplicates,
		stats.CourtsScraped, stats.CompleteInfo, stats.WithImage,
	})
	t.Render()

	if len(stats.MissingReports) == 0 {
		return
	}

	m := table.NewWriter()
	m.SetOutputMirror(w)
	m.SetTitle("Courts With Missing Fields")
	m.AppendHeader(table.Row{"Name", "Address", "Missing"})
	for _, report := range stats.MissingReports {
		name := report.Name
		if name == "" {
			name = "(unnamed)"
		}
		m.AppendRow(table.Row{name, report.Address, strings.Join(report.MissingFields, ", ")})
	}
	m.Render()
}
