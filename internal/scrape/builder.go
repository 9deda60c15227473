package scrape

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"courtscraper/internal/domain"
)

var extensionByType = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	"image/svg+xml": ".svg",
}

// Builder folds extracted page fragments into a CourtRecord and, when an
// image was located, materializes it to local storage.
type Builder struct {
	client   *resty.Client
	imageDir string
	logger   *zap.Logger
}

func NewBuilder(imageDir string, logger *zap.Logger) *Builder {
	return &Builder{
		client:   resty.New().SetTimeout(30 * time.Second),
		imageDir: imageDir,
		logger:   logger,
	}
}

// Build constructs the record. Anchors are padded to exactly three slots
// before the positional schema is applied, so any count from zero to
// three produces a well-formed record. An image download failure leaves
// LocalPath empty and costs nothing else.
func (b *Builder) Build(ctx context.Context, heading string, anchors []domain.LabeledAnchor, imageURL string) *domain.CourtRecord {
	padded := make([]domain.LabeledAnchor, len(domain.AnchorSchema))
	copy(padded, anchors)

	record := &domain.CourtRecord{
		Name:      heading,
		CreatedAt: time.Now(),
	}
	for i, role := range domain.AnchorSchema {
		switch role {
		case domain.RoleAddress:
			record.Address = padded[i].Text
			record.AddressLink = padded[i].Href
		case domain.RolePhone:
			record.Telephone = padded[i].Text
		case domain.RoleWebsite:
			record.WebsiteText = padded[i].Text
			record.WebsiteLink = padded[i].Href
		}
	}

	if imageURL != "" {
		record.Image = b.materializeImage(ctx, imageURL)
	}
	return record
}

// materializeImage downloads the image and writes it under a generated
// unique filename. Every failure degrades to a reference without a local
// copy.
func (b *Builder) materializeImage(ctx context.Context, imageURL string) *domain.ImageRef {
	ref := &domain.ImageRef{SourceURL: imageURL}

	resp, err := b.client.R().SetContext(ctx).Get(imageURL)
	if err != nil || resp.IsError() {
		b.logger.Warn("image download failed", zap.String("url", imageURL), zap.Error(err))
		return ref
	}

	contentType := resp.Header().Get("Content-Type")
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	ref.ContentType = contentType

	ext, ok := extensionByType[contentType]
	if !ok {
		ext = ".jpg"
	}

	if err := os.MkdirAll(b.imageDir, 0o755); err != nil {
		b.logger.Warn("image dir creation failed", zap.String("dir", b.imageDir), zap.Error(err))
		return ref
	}
	path := filepath.Join(b.imageDir, uuid.NewString()+ext)
	if err := os.WriteFile(path, resp.Body(), 0o644); err != nil {
		b.logger.Warn("image write failed", zap.String("path", path), zap.Error(err))
		return ref
	}

	ref.LocalPath = path
	return ref
}
