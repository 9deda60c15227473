package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courtscraper/internal/domain"
)

func sampleRecord(name string) *domain.CourtRecord {
	return &domain.CourtRecord{
		Name:        name,
		Address:     "123 Main St, Springfield",
		AddressLink: "https://www.pickleheads.com/loc/123",
		Telephone:   "555-1234",
		WebsiteText: "Visit site",
		WebsiteLink: "https://example.com",
		Image: &domain.ImageRef{
			SourceURL:   "https://www.pickleheads.com/images/c.jpg",
			ContentType: "image/jpeg",
			LocalPath:   "data/images/c.jpg",
		},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestAppendCourtsWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courts.csv")

	require.NoError(t, AppendCourts(path, []*domain.CourtRecord{sampleRecord("A")}))
	require.NoError(t, AppendCourts(path, []*domain.CourtRecord{sampleRecord("B")}))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "A", rows[1][0])
	assert.Equal(t, "B", rows[2][0])
}

func TestAppendCourtsColumnOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courts.csv")
	require.NoError(t, AppendCourts(path, []*domain.CourtRecord{sampleRecord("A")}))

	rows := readCSV(t, path)
	row := rows[1]
	assert.Equal(t, []string{
		"A",
		"123 Main St, Springfield",
		"https://www.pickleheads.com/loc/123",
		"555-1234",
		"Visit site",
		"https://example.com",
		"https://www.pickleheads.com/images/c.jpg",
		"data/images/c.jpg",
		"image/jpeg",
		"2025-06-01T12:00:00Z",
	}, row)
}

func TestAppendCourtsNoImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courts.csv")
	record := sampleRecord("A")
	record.Image = nil

	require.NoError(t, AppendCourts(path, []*domain.CourtRecord{record}))

	rows := readCSV(t, path)
	assert.Equal(t, "", rows[1][6])
	assert.Equal(t, "", rows[1][7])
	assert.Equal(t, "", rows[1][8])
}

func TestAppendCourtsEmptyInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courts.csv")
	require.NoError(t, AppendCourts(path, nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteStats(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.csv")
	stats := domain.RunStats{}
	stats.Merge(domain.ZipStats{
		ZipCode: "07885", URLsFound: 4, UniqueURLs: 3,
		DuplicatesSkipped: 1, CourtsScraped: 2, CompleteInfo: 1, WithImage: 1,
	})

	require.NoError(t, WriteStats(path, stats))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"07885", "4", "3", "1", "2", "1", "1", "50.0"}, rows[1])
}

func TestWriteSummary(t *testing.T) {
	stats := domain.RunStats{}
	stats.Merge(domain.ZipStats{ZipCode: "07885", URLsFound: 2, CourtsScraped: 1})
	stats.Report(&domain.CourtRecord{Name: "Bare Court"})

	var sb strings.Builder
	WriteSummary(&sb, stats)

	out := sb.String()
	assert.Contains(t, out, "07885")
	assert.Contains(t, out, "Bare Court")
	assert.Contains(t, out, "address, telephone")
}
