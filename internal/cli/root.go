// Package cli wires the dir-catalog commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lithammer/dedent"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"dir-catalog/internal/catalog"
	"dir-catalog/internal/config"
	"dir-catalog/internal/console"
	"dir-catalog/internal/deleter"
	"dir-catalog/internal/logging"
	"dir-catalog/internal/scanner"
	"dir-catalog/internal/tui"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// scanDir is replaced in tests to simulate partial scans.
var scanDir = scanner.ScanDir

// ExitError carries a process exit code up to main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

type options struct {
	path       string
	configPath string
	excludes   []string
	dryRun     bool
	backupDir  string
	policy     string
	logLevel   string
	logFile    string
	tui        bool
}

// NewRootCommand creates and returns the root cobra command for dir-catalog
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "dir-catalog",
		Short: "Catalog the files of a directory, then sort, search and delete them",
		Long: dedentf(`
			dir-catalog reads the regular files of one directory (not recursive) into
			an in-memory catalog and opens an interactive session where the files can
			be sorted by name or by size, searched by name, and deleted from both the
			catalog and the disk.

			Settings are read from %s in the working directory when present;
			flags override the file.`, config.DefaultPath),
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, opts)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.path, "path", "p", ".", "Directory to catalog")
	f.StringVar(&opts.configPath, "config", config.DefaultPath, "Config file")
	f.StringSliceVarP(&opts.excludes, "exclude", "x", nil, "Glob pattern to exclude (can repeat). Matches full path or basename.")
	f.BoolVarP(&opts.dryRun, "dry-run", "d", false, "Do not delete anything from disk")
	f.StringVar(&opts.backupDir, "backup-dir", "", "Zip every file into this directory before deleting it")
	f.StringVar(&opts.policy, "delete-policy", "optimistic", "optimistic: drop the entry even if removal fails; strict: drop it only after removal")
	f.StringVar(&opts.logLevel, "log-level", "warn", "Log level ("+strings.Join(logging.Levels, ", ")+")")
	f.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")
	cmd.Flags().BoolVarP(&opts.tui, "tui", "t", false, "Run the full-screen interface instead of the numbered menu")

	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newFindCommand(opts))
	cmd.AddCommand(newRmCommand(opts))

	return cmd
}

// session is everything a command needs after flags and config are merged.
type session struct {
	cfg *config.Config
	dir string
	log *zap.Logger
}

func (o *options) load(cmd *cobra.Command) (*config.Config, error) {
	load := config.LoadConfig
	if cmd.Flags().Changed("config") {
		load = config.LoadRequired
	}
	cfg, err := load(o.configPath)
	if err != nil {
		return nil, err
	}
	o.override(cfg, cmd.Flags())

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// override copies the explicitly set flags over the file values.
func (o *options) override(cfg *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("exclude") {
		cfg.Excludes = append(cfg.Excludes, o.excludes...)
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = o.dryRun
	}
	if flags.Changed("backup-dir") {
		cfg.BackupDir = o.backupDir
	}
	if flags.Changed("delete-policy") {
		cfg.DeletePolicy = o.policy
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	switch {
	case flags.Lookup("tui") == nil:
		// one-shot subcommands never start the full-screen interface
		cfg.TUI = false
	case flags.Changed("tui"):
		cfg.TUI = o.tui
	}
}

func (o *options) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.load(cmd)
	if err != nil {
		return nil, err
	}

	dir, err := filepath.Abs(o.path)
	if err != nil {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("failed to resolve path: %w", err)}
	}
	if st, err := os.Stat(dir); err != nil {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("failed to resolve path: %w", err)}
	} else if !st.IsDir() {
		return nil, &ExitError{Code: 2, Err: fmt.Errorf("not a directory: %s", dir)}
	}

	var log *zap.Logger
	if cfg.TUI && cfg.LogFile == "" {
		// stderr output would tear the full-screen view
		log = logging.Nop()
	} else if log, err = logging.New(cfg.Logging()); err != nil {
		return nil, err
	}

	return &session{cfg: cfg, dir: dir, log: log}, nil
}

func (s *session) scanOptions() scanner.Options {
	return scanner.Options{Excludes: s.cfg.Excludes}
}

func (s *session) catalogOptions() catalog.Options {
	return catalog.Options{
		Remover: deleter.New(s.cfg.DryRun, s.cfg.BackupDir, s.log),
		Policy:  s.cfg.Policy(),
	}
}

// build scans the directory into a new catalog. A partial scan still yields
// a catalog together with the scan error.
func (s *session) build(ctx context.Context) (*catalog.Catalog, error) {
	entries, err := scanDir(ctx, s.dir, s.scanOptions())
	if err != nil && entries == nil {
		return nil, err
	}

	cat := catalog.New(s.dir, s.catalogOptions())
	for _, e := range entries {
		cat.Append(catalog.NewRecord(e.Name, e.Size))
	}
	s.log.Info("catalog built", zap.String("dir", s.dir), zap.Int("files", cat.Len()))
	return cat, err
}

func runInteractive(cmd *cobra.Command, opts *options) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = s.log.Sync() }()

	if s.cfg.TUI {
		if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
			return tui.Run(s.dir, s.scanOptions(), s.catalogOptions(), s.log)
		}
		s.log.Warn("stdin or stdout is not a terminal, using the numbered menu")
	}

	cat, err := s.build(cmd.Context())
	if cat == nil {
		return err
	}
	reportScanErr(cmd, err)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Cataloged %d files in %s\n", cat.Len(), s.dir)
	if s.cfg.DryRun {
		fmt.Fprintln(out, "Dry run: files will not be removed from disk.")
	}
	return console.NewMenu(cat, cmd.InOrStdin(), out, s.log).Run()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func dedentf(format string, args ...interface{}) string {
	return fmt.Sprintf(dedent.Dedent(strings.TrimPrefix(format, "\n")), args...)
}

// ExitCode maps an error returned by the root command to a process status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}
