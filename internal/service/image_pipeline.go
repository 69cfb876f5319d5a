package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/line-menu-bot/internal/domain"
	apperrors "github.com/spec-kit/line-menu-bot/pkg/util/errorutil"
)

// ContentFetcher downloads message content from the platform.
type ContentFetcher interface {
	GetMessageContent(ctx context.Context, messageID string) (io.ReadCloser, error)
}

// ContentStore persists downloaded bytes and allocates derived file names.
type ContentStore interface {
	Save(ctx context.Context, r io.Reader) (domain.DownloadedContent, error)
	Allocate(ctx context.Context, ext string) domain.DownloadedContent
}

// PreviewRenderer writes a downscaled copy of src to dst.
type PreviewRenderer interface {
	Preview(ctx context.Context, src, dst string) error
}

// ImagePipeline downloads an image message and prepares original and preview URIs.
type ImagePipeline struct {
	fetcher    ContentFetcher
	store      ContentStore
	transcoder PreviewRenderer
	logger     *zap.Logger
}

// NewImagePipeline constructs the pipeline.
func NewImagePipeline(fetcher ContentFetcher, store ContentStore, transcoder PreviewRenderer, logger *zap.Logger) *ImagePipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImagePipeline{
		fetcher:    fetcher,
		store:      store,
		transcoder: transcoder,
		logger:     logger.Named("image_pipeline"),
	}
}

// HandleImage fetches and stores the content, then renders a preview. Fetch
// or store failures are returned. A failed preview is logged and the
// original URI is reused as the preview.
func (p *ImagePipeline) HandleImage(ctx context.Context, contentID string) (originalURI, previewURI string, err error) {
	body, err := p.fetcher.GetMessageContent(ctx, contentID)
	if err != nil {
		return "", "", apperrors.NewUpstreamError("get message content", err)
	}
	defer body.Close()

	original, err := p.store.Save(ctx, body)
	if err != nil {
		return "", "", fmt.Errorf("save content %s: %w", contentID, err)
	}

	ext := strings.TrimPrefix(filepath.Ext(original.Path), ".")
	preview := p.store.Allocate(ctx, ext)
	if err := p.transcoder.Preview(ctx, original.Path, preview.Path); err != nil {
		p.logger.Warn("preview failed, reusing original",
			zap.String("content_id", contentID),
			zap.String("original", original.Path),
			zap.Error(err),
		)
		_ = os.Remove(preview.Path)
		return original.URI, original.URI, nil
	}
	return original.URI, preview.URI, nil
}
