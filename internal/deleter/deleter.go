// Package deleter removes cataloged files from disk.
package deleter

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"dir-catalog/internal/compressor"
)

// Remover deletes one file.
type Remover interface {
	Remove(path string) error
}

// OS removes files for real.
type OS struct {
	Log *zap.Logger
}

func (o OS) Remove(path string) error {
	if err := os.Remove(path); err != nil {
		logger(o.Log).Warn("remove failed", zap.String("path", path), zap.Error(err))
		return err
	}
	logger(o.Log).Info("removed", zap.String("path", path))
	return nil
}

// DryRun reports what would be removed without touching the disk.
// It still fails for paths that are already gone.
type DryRun struct {
	Log *zap.Logger
}

func (d DryRun) Remove(path string) error {
	if _, err := os.Lstat(path); err != nil {
		return err
	}
	logger(d.Log).Info("dry-run: would remove", zap.String("path", path))
	return nil
}

// Archiving zips each file into OutDir before handing it to Next.
// If the archive cannot be written the file is left alone.
type Archiving struct {
	OutDir string
	Next   Remover
	Log    *zap.Logger
}

func (a Archiving) Remove(path string) error {
	arc, err := compressor.ArchiveFile(context.Background(), path, a.OutDir)
	if err != nil {
		return fmt.Errorf("backup before delete: %w", err)
	}
	logger(a.Log).Info("archived", zap.String("path", arc.Source), zap.String("archive", arc.Dest), zap.Int64("bytes", arc.Size))
	if a.Next == nil {
		return nil
	}
	return a.Next.Remove(path)
}

// New picks the Remover for the given settings.
func New(dryRun bool, backupDir string, log *zap.Logger) Remover {
	var r Remover = OS{Log: log}
	if dryRun {
		r = DryRun{Log: log}
	}
	if backupDir != "" && !dryRun {
		r = Archiving{OutDir: backupDir, Next: r, Log: log}
	}
	return r
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
