package compressor

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Archive describes one written backup.
type Archive struct {
	Source string
	Dest   string
	Size   int64 // archive size in bytes
}

// ArchiveFile writes src, a regular file, into a new .zip archive inside
// outDir and returns where it went. An existing archive is never overwritten;
// a numeric suffix is added instead.
func ArchiveFile(ctx context.Context, src, outDir string) (Archive, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	info, err := os.Stat(src)
	if err != nil {
		return Archive{}, err
	}
	if !info.Mode().IsRegular() {
		return Archive{}, fmt.Errorf("not a regular file: %s", src)
	}
	if outDir == "" {
		outDir = filepath.Dir(src)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Archive{}, err
	}

	dest := nextAvailable(filepath.Join(outDir, filepath.Base(src)+".zip"))
	size, err := zipFile(ctx, src, dest, info)
	if err != nil {
		// cleanup partial file
		_ = os.Remove(dest)
		return Archive{}, fmt.Errorf("archive %s: %w", src, err)
	}
	return Archive{Source: src, Dest: dest, Size: size}, nil
}

func nextAvailable(p string) string {
	if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
		return p
	}
	dir := filepath.Dir(p)
	base := filepath.Base(p)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	for i := 1; i < 10000; i++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s-%d%s", name, i, ext))
		if _, err := os.Stat(cand); errors.Is(err, fs.ErrNotExist) {
			return cand
		}
	}
	return p
}

// zipFile stores src as the single entry of a new archive at dest and returns the archive size.
func zipFile(ctx context.Context, src, dest string, info fs.FileInfo) (int64, error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	defer func() { _ = zw.Close() }()

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, err
	}
	hdr.Name = filepath.Base(src)
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return 0, err
	}

	rf, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer rf.Close()

	if _, err := io.Copy(w, readerWithContext{ctx: ctx, r: rf}); err != nil {
		return 0, err
	}

	if err := zw.Close(); err != nil {
		return 0, err
	}
	if err := f.Sync(); err != nil {
		return 0, err
	}
	st, err := os.Stat(dest)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

// readerWithContext stops a copy once ctx is done.
type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
