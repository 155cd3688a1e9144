package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dir-catalog/internal/catalog"
	"dir-catalog/internal/console"
	"dir-catalog/pkg/utils"
)

type fileJSON struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

type listJSON struct {
	Root      string     `json:"root"`
	Order     string     `json:"order"`
	Count     int        `json:"count"`
	TotalSize int64      `json:"totalSize"`
	Files     []fileJSON `json:"files"`
	Duration  string     `json:"duration"`
}

func newListCommand(opts *options) *cobra.Command {
	var (
		sortBy  string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the catalog once and exit",
		Long: dedentf(`
			Scan the directory and print every cataloged file with its size.
			--sort picks the order: name (case-insensitive), size (ascending) or
			none (directory order).`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.log.Sync() }()

			cat, scanErr := s.build(cmd.Context())
			if cat == nil {
				return scanErr
			}
			reportScanErr(cmd, scanErr)

			switch sortBy {
			case "name":
				cat.SortByName()
			case "size":
				cat.SortBySize()
			case "none", "":
			default:
				return fmt.Errorf("unknown sort order %q (want name, size or none)", sortBy)
			}
			s.log.Debug("listing catalog", zap.Stringer("order", cat.Order()))

			out := cmd.OutOrStdout()
			if jsonOut {
				payload := listJSON{
					Root:      cat.Dir(),
					Order:     cat.Order().String(),
					Count:     cat.Len(),
					TotalSize: cat.TotalSize(),
					Files:     []fileJSON{},
					Duration:  time.Since(start).String(),
				}
				cat.Each(func(r catalog.Record) bool {
					payload.Files = append(payload.Files, fileJSON{Name: r.Name, Size: r.Size})
					return true
				})
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(payload); err != nil {
					return fmt.Errorf("failed to write json: %w", err)
				}
			} else {
				fmt.Fprintf(out, "dir-catalog list\nroot: %s\nfiles: %d\n", cat.Dir(), cat.Len())
				fmt.Fprintln(out, "----------------------------------------------")
				cat.Each(func(r catalog.Record) bool {
					fmt.Fprintln(out, console.FormatRecord(r))
					return true
				})
				fmt.Fprintln(out, "----------------------------------------------")
				fmt.Fprintf(out, "Total size: %s\n", utils.HumanizeBytes(cat.TotalSize()))
			}

			if scanErr != nil {
				return &ExitError{Code: 1, Err: scanErr}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sortBy, "sort", "s", "none", "Sort order: name, size or none")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON instead of text")
	return cmd
}

func newFindCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "find NAME",
		Short: "Look up one file by name (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.log.Sync() }()

			cat, err := s.build(cmd.Context())
			if cat == nil {
				return err
			}
			reportScanErr(cmd, err)
			cat.SortByName()

			name := args[0]
			rec, ok := cat.FindByName(name)
			if !ok {
				s.log.Info("search miss", zap.String("name", name))
				fmt.Fprintln(cmd.OutOrStdout(), "File not found.")
				return &ExitError{Code: 1, Err: fmt.Errorf("%s: %w", name, catalog.ErrNotFound)}
			}
			s.log.Info("search hit", zap.String("name", rec.Name))
			fmt.Fprintf(cmd.OutOrStdout(), "File found - %s\n", console.FormatRecord(rec))
			return nil
		},
	}
}

func newRmCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME",
		Short: "Delete one file by name (case-insensitive)",
		Long: dedentf(`
			Remove one cataloged file from disk. With --dry-run nothing is removed;
			with --backup-dir the file is zipped there first.`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.log.Sync() }()

			cat, err := s.build(cmd.Context())
			if cat == nil {
				return err
			}
			reportScanErr(cmd, err)

			name := args[0]
			rec, err := cat.DeleteByName(name)
			var de *catalog.DeleteError
			switch {
			case err == nil:
				fmt.Fprintf(cmd.OutOrStdout(), "File deleted - %s\n", console.FormatRecord(rec))
				return nil
			case errors.Is(err, catalog.ErrNotFound):
				fmt.Fprintln(cmd.OutOrStdout(), "File not found. Deletion failed.")
				return &ExitError{Code: 1, Err: fmt.Errorf("%s: %w", name, err)}
			case errors.As(err, &de):
				s.log.Error("delete failed", zap.String("path", de.Path), zap.Error(de.Err))
				return err
			default:
				return err
			}
		},
	}
}

// reportScanErr prints a partial-scan error; the command goes on with the
// files that were read.
func reportScanErr(cmd *cobra.Command, err error) {
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "scan completed with errors: %v\n", err)
	}
}
