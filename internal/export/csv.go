package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"courtscraper/internal/domain"
)

// Header is the fixed column order of the court export.
var Header = []string{
	"name", "address", "address_link", "telephone", "website_text",
	"website_link", "image_url", "image_path", "image_type", "created_at",
}

var statsHeader = []string{
	"zip_code", "urls_found", "unique_urls", "duplicates_skipped",
	"courts_scraped", "complete_info", "with_image", "success_rate",
}

// AppendCourts writes records to a CSV file, creating it with a header
// on first use and appending without one afterwards.
func AppendCourts(path string, records []*domain.CourtRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("csv dir creation: %w", err)
	}

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("csv open: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(Header); err != nil {
			return fmt.Errorf("csv header: %w", err)
		}
	}
	for _, record := range records {
		if err := w.Write(courtRow(record)); err != nil {
			return fmt.Errorf("csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func courtRow(record *domain.CourtRecord) []string {
	var imageURL, imagePath, imageType string
	if record.Image != nil {
		imageURL = record.Image.SourceURL
		imagePath = record.Image.LocalPath
		imageType = record.Image.ContentType
	}
	return []string{
		record.Name,
		record.Address,
		record.AddressLink,
		record.Telephone,
		record.WebsiteText,
		record.WebsiteLink,
		imageURL,
		imagePath,
		imageType,
		record.CreatedAt.Format(time.RFC3339),
	}
}

// WriteStats writes the per-zip statistics table, replacing any previous
// file; statistics describe one run, not an accumulating log.
func WriteStats(path string, stats domain.RunStats) error {
	if len(stats.PerZip) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("stats dir creation: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("stats open: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(statsHeader); err != nil {
		return fmt.Errorf("stats header: %w", err)
	}
	for _, z := range stats.PerZip {
		row := []string{
			z.ZipCode,
			fmt.Sprintf("%d", z.URLsFound),
			fmt.Sprintf("%d", z.UniqueURLs),
			fmt.Sprintf("%d", z.DuplicatesSkipped),
			fmt.Sprintf("%d", z.CourtsScraped),
			fmt.Sprintf("%d", z.CompleteInfo),
			fmt.Sprintf("%d", z.WithImage),
			fmt.Sprintf("%.1f", z.SuccessRate()),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("stats row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}
