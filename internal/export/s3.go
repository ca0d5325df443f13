package export

import (
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/courtedge/courtbot/internal/domain"
)

// S3Uploader mirrors exported files to object storage after the local write
// succeeds. Upload problems are logged and swallowed: losing a remote copy
// must never fail a scan that already produced local output.
type S3Uploader struct {
	blob   domain.BlobWriter
	prefix string
	logger *slog.Logger
}

// NewS3Uploader creates an uploader that stores files under prefix.
func NewS3Uploader(blob domain.BlobWriter, prefix string, logger *slog.Logger) *S3Uploader {
	return &S3Uploader{
		blob:   blob,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.With(slog.String("component", "s3_uploader")),
	}
}

// Upload streams the file at localPath to {prefix}/{basename}.
func (u *S3Uploader) Upload(ctx context.Context, localPath string) {
	f, err := os.Open(localPath)
	if err != nil {
		u.logger.Warn("upload skipped, cannot open file",
			slog.String("path", localPath),
			slog.String("error", err.Error()),
		)
		return
	}
	defer f.Close()

	key := path.Join(u.prefix, filepath.Base(localPath))
	if err := u.blob.Put(ctx, key, f, contentTypeFor(localPath)); err != nil {
		u.logger.Warn("upload failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}

	u.logger.Info("export uploaded", slog.String("key", key))
}

func contentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".csv":
		return "text/csv"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/octet-stream"
	}
}
