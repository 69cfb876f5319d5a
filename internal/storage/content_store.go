// Package storage keeps downloaded message content on local disk under a
// single directory that the HTTP layer serves at /downloaded/.
package storage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/zap"

	"github.com/spec-kit/line-menu-bot/internal/domain"
)

const (
	// PublicPrefix is the URI path the download directory is served under.
	PublicPrefix = "/downloaded/"

	// DefaultExtension is used when the content type cannot be sniffed.
	DefaultExtension = "jpg"

	// MaxContentBytes bounds a single downloaded object.
	MaxContentBytes int64 = 50 * 1024 * 1024

	sniffLen = 262
)

// ErrContentTooLarge indicates the payload exceeds MaxContentBytes.
var ErrContentTooLarge = errors.New("downloaded content too large")

type baseURLKey struct{}

// WithBaseURL attaches the public base URL of the current request to ctx.
// It is used when the store has no configured base URL.
func WithBaseURL(ctx context.Context, baseURL string) context.Context {
	return context.WithValue(ctx, baseURLKey{}, strings.TrimRight(baseURL, "/"))
}

func baseURLFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(baseURLKey{}).(string); ok {
		return v
	}
	return ""
}

// ContentStore writes blobs into the download directory under unique names.
type ContentStore struct {
	dir     string
	baseURL string
	logger  *zap.Logger
	now     func() time.Time
}

// NewContentStore creates the download directory if needed.
func NewContentStore(dir, baseURL string, logger *zap.Logger) (*ContentStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve download dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create download dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentStore{
		dir:     abs,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("content_store"),
		now:     time.Now,
	}, nil
}

// Dir returns the absolute download directory.
func (s *ContentStore) Dir() string {
	return s.dir
}

// Allocate reserves a fresh name with the given extension without writing it.
func (s *ContentStore) Allocate(ctx context.Context, ext string) domain.DownloadedContent {
	name := s.fileName(ext)
	return domain.DownloadedContent{
		Path: filepath.Join(s.dir, name),
		URI:  s.uri(ctx, name),
	}
}

// Save streams r into a new file. The extension is sniffed from the leading
// bytes and falls back to DefaultExtension.
func (s *ContentStore) Save(ctx context.Context, r io.Reader) (domain.DownloadedContent, error) {
	if r == nil {
		return domain.DownloadedContent{}, fmt.Errorf("reader is required")
	}
	br := bufio.NewReaderSize(r, sniffLen)
	head, err := br.Peek(sniffLen)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return domain.DownloadedContent{}, fmt.Errorf("read content: %w", err)
	}

	content := s.Allocate(ctx, DetectExtension(head))
	f, err := os.OpenFile(content.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return domain.DownloadedContent{}, fmt.Errorf("create file: %w", err)
	}

	written, copyErr := io.Copy(f, io.LimitReader(br, MaxContentBytes+1))
	closeErr := f.Close()
	if copyErr == nil && written > MaxContentBytes {
		copyErr = fmt.Errorf("%w: max %d bytes", ErrContentTooLarge, MaxContentBytes)
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(content.Path)
		return domain.DownloadedContent{}, fmt.Errorf("write file: %w", copyErr)
	}

	s.logger.Info("saved content",
		zap.String("path", content.Path),
		zap.Int64("size_bytes", written),
	)
	return content, nil
}

// Sweep removes regular files older than maxAge and returns how many were deleted.
func (s *ContentStore) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read download dir: %w", err)
	}
	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if maxAge > 0 && info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("remove content", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

// Cleanup deletes every downloaded file. It is called on shutdown.
func (s *ContentStore) Cleanup() error {
	_, err := s.Sweep(0)
	return err
}

// Resolve maps a public file name back to its path, rejecting traversal.
func (s *ContentStore) Resolve(name string) (string, error) {
	clean := filepath.Base(filepath.Clean("/" + name))
	if clean == "/" || clean == "." || clean != name {
		return "", fmt.Errorf("invalid content name: %q", name)
	}
	return filepath.Join(s.dir, clean), nil
}

func (s *ContentStore) fileName(ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	if ext == "" {
		ext = DefaultExtension
	}
	return s.now().UTC().Format("20060102-150405.000000") + "-" + uuid.NewString() + "." + ext
}

func (s *ContentStore) uri(ctx context.Context, name string) string {
	base := s.baseURL
	if base == "" {
		base = baseURLFromContext(ctx)
	}
	return base + PublicPrefix + name
}

// DetectExtension returns the file extension for a content header.
func DetectExtension(head []byte) string {
	kind, err := filetype.Match(head)
	if err != nil || kind == filetype.Unknown || kind.Extension == "" {
		return DefaultExtension
	}
	return kind.Extension
}
