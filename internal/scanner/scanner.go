package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Entry is one regular file found in the scanned directory.
type Entry struct {
	Name string
	Size int64
}

// Options defines scanning behavior.
type Options struct {
	Excludes []string // glob patterns matched against full path and base name
}

// ScanDir lists the regular files directly inside root, in the order the
// filesystem returns them. Directories, symlinks and other special files are
// skipped. Entries whose size cannot be read are reported in the merged error
// while the rest are still returned.
func ScanDir(ctx context.Context, root string, opts Options) ([]Entry, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	f, err := os.Open(root)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", root, err)
	}
	defer f.Close()

	// (*os.File).ReadDir keeps directory order; os.ReadDir would sort by name.
	dirents, err := f.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", root, err)
	}

	var entries []Entry
	var errs []error
	for _, d := range dirents {
		select {
		case <-ctx.Done():
			return entries, ctx.Err()
		default:
		}

		if !d.Type().IsRegular() {
			continue
		}
		path := filepath.Join(root, d.Name())
		if excluded(path, opts.Excludes) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			// removed between listing and stat
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("stat %s: %w", path, err))
			continue
		}
		entries = append(entries, Entry{Name: d.Name(), Size: info.Size()})
	}

	return entries, errors.Join(errs...)
}

func excluded(p string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	base := filepath.Base(p)
	for _, pat := range patterns {
		if pat == "" {
			continue
		}
		if ok, _ := filepath.Match(pat, p); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, base); ok {
			return true
		}
	}
	return false
}
