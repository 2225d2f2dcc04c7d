package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"rsih_portal/internal/platform/config"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// Store persists uploaded files and returns a reference clients can fetch:
// a /uploads/... path in disk mode or a public URL in bucket mode.
type Store interface {
	// Upload writes r under a freshly generated collision-resistant name.
	Upload(ctx context.Context, bucket, originalName string, r io.Reader) (string, error)
	// Promote moves a staged temp file into the bucket under the exact name given.
	Promote(ctx context.Context, bucket, tempPath, name string) (string, error)
	// Remove deletes a stored object by reference. Missing objects are not an error.
	Remove(ctx context.Context, bucket, ref string) error
	// EnsureBucket creates the bucket if it is absent. Failures are logged only.
	EnsureBucket(ctx context.Context, bucket string)
}

const randomSuffixLen = 13

var contentTypes = map[string]string{
	".pdf":  "application/pdf",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// New builds the store selected by STORAGE_DRIVER.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case config.StorageDisk:
		return NewDiskStore(cfg.UploadDir), nil
	case config.StorageS3:
		return NewS3Store(S3Options{
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			ForcePathStyle:  cfg.S3ForcePathStyle,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// ContentType maps office and pdf extensions explicitly; anything else is binary.
func ContentType(name string) string {
	if ct, ok := contentTypes[strings.ToLower(filepath.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ObjectName returns {unixMillis}-{random alphanumerics}{ext}.
func ObjectName(originalName string, now time.Time) string {
	return fmt.Sprintf("%d-%s%s", now.UnixMilli(), randomSuffix(), cleanExt(originalName))
}

// DocumentName names a SPOC identification document after its owner.
func DocumentName(spocID int64, originalName string) string {
	return fmt.Sprintf("%d_%s", spocID, SanitizeFileName(originalName))
}

// SanitizeFileName slugifies the base name and keeps a lower-cased extension.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := cleanExt(name)
	base := slug.Make(strings.TrimSuffix(name, filepath.Ext(name)))
	if base == "" {
		base = "file"
	}
	return base + ext
}

func cleanExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, r := range ext[min(1, len(ext)):] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:randomSuffixLen]
}
