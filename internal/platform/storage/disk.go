package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// PublicPrefix is the URL path disk-mode references are served under.
const PublicPrefix = "/uploads"

type DiskStore struct {
	root string
}

func NewDiskStore(root string) *DiskStore {
	return &DiskStore{root: root}
}

func (s *DiskStore) Root() string {
	return s.root
}

func (s *DiskStore) Upload(ctx context.Context, bucket, originalName string, r io.Reader) (string, error) {
	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("DiskStore.Upload mkdir: %w", err)
	}

	name := ObjectName(originalName, time.Now())
	dest := filepath.Join(dir, name)
	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("DiskStore.Upload create: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dest)
		return "", fmt.Errorf("DiskStore.Upload write: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("DiskStore.Upload close: %w", err)
	}
	return path.Join(PublicPrefix, bucket, name), nil
}

func (s *DiskStore) Promote(ctx context.Context, bucket, tempPath, name string) (string, error) {
	dir := filepath.Join(s.root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("DiskStore.Promote mkdir: %w", err)
	}
	name = filepath.Base(name)
	dest := filepath.Join(dir, name)

	if err := os.Rename(tempPath, dest); err != nil {
		// Rename fails across filesystems, e.g. when the temp dir is a tmpfs.
		if err := copyFile(tempPath, dest); err != nil {
			return "", fmt.Errorf("DiskStore.Promote: %w", err)
		}
		os.Remove(tempPath)
	}
	return path.Join(PublicPrefix, bucket, name), nil
}

func (s *DiskStore) Remove(ctx context.Context, bucket, ref string) error {
	prefix := path.Join(PublicPrefix, bucket) + "/"
	if !strings.HasPrefix(ref, prefix) {
		return fmt.Errorf("DiskStore.Remove: reference %q is not in bucket %q", ref, bucket)
	}
	target := filepath.Join(s.root, bucket, path.Base(ref))
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("DiskStore.Remove: %w", err)
	}
	return nil
}

func (s *DiskStore) EnsureBucket(ctx context.Context, bucket string) {
	if err := os.MkdirAll(filepath.Join(s.root, bucket), 0o755); err != nil {
		log.Printf("ERROR: could not create upload directory for bucket %s: %v", bucket, err)
		return
	}
	log.Printf("INFO: upload directory ready for bucket %s", bucket)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
