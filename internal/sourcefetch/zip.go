package sourcefetch

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ZipFetcher materializes a project archive uploaded to object storage into
// a local directory the discovery phase can walk.
type ZipFetcher struct {
	store *ObjectStore
}

func NewZipFetcher(store *ObjectStore) *ZipFetcher {
	return &ZipFetcher{store: store}
}

// Upload streams a project archive into object storage ahead of indexing.
func (z *ZipFetcher) Upload(ctx context.Context, objectName string, reader io.Reader, size int64) error {
	return z.store.Upload(ctx, objectName, reader, size)
}

// Extract downloads objectName and unpacks it under destDir, rejecting any
// entry that would escape destDir (zip slip) and capping each extracted
// file at 100MB to bound a malicious or corrupt archive.
func (z *ZipFetcher) Extract(ctx context.Context, objectName, destDir string) error {
	reader, err := z.store.Download(ctx, objectName)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}
	defer reader.Close()

	tmpFile, err := os.CreateTemp("", "polyglotdex-src-*.zip")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := io.Copy(tmpFile, reader); err != nil {
		return fmt.Errorf("copy to temp: %w", err)
	}
	tmpFile.Close()

	zr, err := zip.OpenReader(tmpFile.Name())
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if err := extractEntry(f, destDir); err != nil {
			return err
		}
	}
	return nil
}

const maxExtractedFileSize = 100 * 1024 * 1024

func extractEntry(f *zip.File, destDir string) error {
	target := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return fmt.Errorf("invalid archive entry: %s", f.Name)
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry: %w", err)
	}
	defer rc.Close()

	outFile, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer outFile.Close()

	if _, err := io.Copy(outFile, io.LimitReader(rc, maxExtractedFileSize)); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}
