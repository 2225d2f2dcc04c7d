package storage

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentType(t *testing.T) {
	tests := map[string]string{
		"deck.pdf":  "application/pdf",
		"deck.PPT":  "application/vnd.ms-powerpoint",
		"deck.pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"idea.doc":  "application/msword",
		"idea.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"image.png": "application/octet-stream",
		"no_ext":    "application/octet-stream",
	}
	for name, want := range tests {
		assert.Equal(t, want, ContentType(name), name)
	}
}

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name := ObjectName("My Deck.PPTX", now)
	assert.Regexp(t, regexp.MustCompile(`^1700000000123-[a-z0-9]{13}\.pptx$`), name)
	assert.NotEqual(t, name, ObjectName("My Deck.PPTX", now))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "nomination-letter.pdf", SanitizeFileName("Nomination Letter.PDF"))
	assert.Equal(t, "passwd", SanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "file.pdf", SanitizeFileName("###.pdf"))
	assert.Equal(t, "42_nomination.pdf", DocumentName(42, "nomination.pdf"))
}

func TestDiskStoreUploadAndRemove(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root)
	ctx := context.Background()

	ref, err := store.Upload(ctx, "team-presentations", "deck.pptx", strings.NewReader("slides"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "/uploads/team-presentations/"))
	assert.True(t, strings.HasSuffix(ref, ".pptx"))

	stored := filepath.Join(root, "team-presentations", filepath.Base(ref))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "slides", string(data))

	require.NoError(t, store.Remove(ctx, "team-presentations", ref))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	// Removing twice is fine.
	assert.NoError(t, store.Remove(ctx, "team-presentations", ref))
	assert.Error(t, store.Remove(ctx, "team-presentations", "/uploads/other/x.pdf"))
}

func TestDiskStorePromote(t *testing.T) {
	root := t.TempDir()
	store := NewDiskStore(root)

	temp := filepath.Join(t.TempDir(), "upload-123")
	require.NoError(t, os.WriteFile(temp, []byte("%PDF"), 0o600))

	ref, err := store.Promote(context.Background(), "spoc-documents", temp, "7_nomination.pdf")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/spoc-documents/7_nomination.pdf", ref)

	data, err := os.ReadFile(filepath.Join(root, "spoc-documents", "7_nomination.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))

	_, err = os.Stat(temp)
	assert.True(t, os.IsNotExist(err))
}

func TestDiskStoreEnsureBucket(t *testing.T) {
	root := t.TempDir()
	NewDiskStore(root).EnsureBucket(context.Background(), "spoc-documents")
	info, err := os.Stat(filepath.Join(root, "spoc-documents"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestS3PublicURL(t *testing.T) {
	aws, err := NewS3Store(S3Options{Region: "ap-south-1", AccessKeyID: "k", SecretAccessKey: "s"})
	require.NoError(t, err)
	assert.Equal(t, "https://docs.s3.ap-south-1.amazonaws.com/a.pdf", aws.PublicURL("docs", "a.pdf"))

	minio, err := NewS3Store(S3Options{Region: "us-east-1", Endpoint: "http://localhost:9000/", ForcePathStyle: true})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/docs/a.pdf", minio.PublicURL("docs", "a.pdf"))

	supa, err := NewS3Store(S3Options{Region: "us-east-1", Endpoint: "http://x", PublicBaseURL: "https://proj.supabase.co/storage/v1/object/public/"})
	require.NoError(t, err)
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/docs/a.pdf", supa.PublicURL("docs", "a.pdf"))
}
