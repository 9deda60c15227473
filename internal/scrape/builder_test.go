package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"courtscraper/internal/domain"
)

func TestBuildPadsAnchors(t *testing.T) {
	builder := NewBuilder(t.TempDir(), zap.NewNop())

	anchorSets := [][]domain.LabeledAnchor{
		nil,
		{{Href: "/loc/1", Text: "1 First St, Town"}},
		{{Text: "1 First St, Town"}, {Text: "555-0001"}},
		{{Text: "1 First St, Town"}, {Text: "555-0001"}, {Href: "https://x.test", Text: "Site"}},
	}

	for _, anchors := range anchorSets {
		record := builder.Build(context.Background(), "Some Court", anchors, "")

		require.NotNil(t, record)
		assert.Equal(t, "Some Court", record.Name)
		assert.False(t, record.CreatedAt.IsZero())
		if len(anchors) < 2 {
			assert.Empty(t, record.Telephone)
		}
		if len(anchors) < 3 {
			assert.Empty(t, record.WebsiteText)
		}
	}
}

func TestBuildDownloadsImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("not really a png"))
	}))
	defer server.Close()

	dir := t.TempDir()
	builder := NewBuilder(dir, zap.NewNop())

	record := builder.Build(context.Background(), "Court", nil, server.URL+"/court.png")

	require.NotNil(t, record.Image)
	assert.Equal(t, server.URL+"/court.png", record.Image.SourceURL)
	assert.Equal(t, "image/png", record.Image.ContentType)
	require.NotEmpty(t, record.Image.LocalPath)
	assert.Equal(t, ".png", filepath.Ext(record.Image.LocalPath))

	data, err := os.ReadFile(record.Image.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "not really a png", string(data))
	assert.True(t, record.HasImage())
}

func TestBuildImageDownloadFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	builder := NewBuilder(t.TempDir(), zap.NewNop())

	record := builder.Build(context.Background(), "Court", nil, server.URL+"/missing.jpg")

	// Image persistence failure is never fatal to record creation.
	require.NotNil(t, record)
	require.NotNil(t, record.Image)
	assert.Empty(t, record.Image.LocalPath)
	assert.False(t, record.HasImage())
	assert.Equal(t, "Court", record.Name)
}

func TestBuildNoImage(t *testing.T) {
	builder := NewBuilder(t.TempDir(), zap.NewNop())

	record := builder.Build(context.Background(), "Court", nil, "")

	assert.Nil(t, record.Image)
}
