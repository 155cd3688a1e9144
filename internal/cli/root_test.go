package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dir-catalog/internal/catalog"
	"dir-catalog/internal/scanner"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func writeFileOfSize(t *testing.T, path string, size int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close %s: %v", path, err)
	}
}

// fixture creates a directory holding b(30), A(10) and c(20).
func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFileOfSize(t, filepath.Join(dir, "b"), 30)
	writeFileOfSize(t, filepath.Join(dir, "A"), 10)
	writeFileOfSize(t, filepath.Join(dir, "c"), 20)
	return dir
}

// execute runs the root command against an empty config file so a
// .dir-catalog.yaml in the working directory never leaks in.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(cfgPath, nil, 0o644))

	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	full := append([]string{"--config", cfgPath, "--log-level", "error"}, args...)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommandHelp(t *testing.T) {
	out, _, err := execute(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "dir-catalog")
	assert.Contains(t, out, "--delete-policy")
	assert.Contains(t, out, ".dir-catalog.yaml")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"list", "find", "rm"})
}

func TestInteractiveMenu(t *testing.T) {
	dir := fixture(t)

	out, _, err := execute(t, "1\n3\nb\n4\nC\n5\n", "--path", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Cataloged 3 files in "+dir)
	assert.Contains(t, out, `File found - Filename: "b", Size: 30 bytes`)
	assert.Contains(t, out, `File deleted - Filename: "c", Size: 20 bytes`)
	assert.Contains(t, out, "Exiting program.")
	assert.NoFileExists(t, filepath.Join(dir, "c"))
}

func TestInteractiveMenuEndOfInput(t *testing.T) {
	out, _, err := execute(t, "", "--path", fixture(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Exiting program.")
}

func TestInteractiveTUIFallsBackWithoutTerminal(t *testing.T) {
	out, _, err := execute(t, "5\n", "--path", fixture(t), "--tui")
	require.NoError(t, err)
	assert.Contains(t, out, "Exiting program.")
}

func TestListText(t *testing.T) {
	dir := fixture(t)

	out, _, err := execute(t, "", "list", "--path", dir, "--sort", "size")
	require.NoError(t, err)

	iA := strings.Index(out, `Filename: "A"`)
	iC := strings.Index(out, `Filename: "c"`)
	iB := strings.Index(out, `Filename: "b"`)
	require.True(t, iA >= 0 && iC >= 0 && iB >= 0, out)
	assert.Less(t, iA, iC)
	assert.Less(t, iC, iB)
	assert.Contains(t, out, "files: 3")
	assert.Contains(t, out, "Total size: 60 B")
}

func TestListJSON(t *testing.T) {
	dir := fixture(t)

	out, _, err := execute(t, "", "list", "--path", dir, "--sort", "name", "--json")
	require.NoError(t, err)

	var got listJSON
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, dir, got.Root)
	assert.Equal(t, "name", got.Order)
	assert.Equal(t, 3, got.Count)
	assert.Equal(t, int64(60), got.TotalSize)
	assert.Equal(t, []fileJSON{{"A", 10}, {"b", 30}, {"c", 20}}, got.Files)
}

func TestListEmptyDirectoryJSON(t *testing.T) {
	out, _, err := execute(t, "", "list", "--path", t.TempDir(), "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"files": []`)
}

func TestListUnknownSort(t *testing.T) {
	_, _, err := execute(t, "", "list", "--path", fixture(t), "--sort", "mtime")
	assert.ErrorContains(t, err, "unknown sort order")
}

func TestListExcludes(t *testing.T) {
	dir := fixture(t)
	out, _, err := execute(t, "", "list", "--path", dir, "-x", "b", "--json")
	require.NoError(t, err)
	assert.NotContains(t, out, `"name": "b"`)
	assert.Contains(t, out, `"count": 2`)
}

func TestFind(t *testing.T) {
	dir := fixture(t)

	out, _, err := execute(t, "", "find", "--path", dir, "a")
	require.NoError(t, err)
	assert.Contains(t, out, `File found - Filename: "A", Size: 10 bytes`)

	out, _, err = execute(t, "", "find", "--path", dir, "zzz")
	require.Error(t, err)
	assert.Contains(t, out, "File not found.")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, 1, ExitCode(err))
}

func TestRm(t *testing.T) {
	dir := fixture(t)

	out, _, err := execute(t, "", "rm", "--path", dir, "B")
	require.NoError(t, err)
	assert.Contains(t, out, `File deleted - Filename: "b"`)
	assert.NoFileExists(t, filepath.Join(dir, "b"))

	_, _, err = execute(t, "", "rm", "--path", dir, "b")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, 1, ExitCode(err))
}

func TestRmDryRun(t *testing.T) {
	dir := fixture(t)

	out, _, err := execute(t, "", "rm", "--path", dir, "--dry-run", "c")
	require.NoError(t, err)
	assert.Contains(t, out, "File deleted")
	assert.FileExists(t, filepath.Join(dir, "c"))
}

func TestRmWithBackup(t *testing.T) {
	dir := fixture(t)
	backup := filepath.Join(t.TempDir(), "backup")

	_, _, err := execute(t, "", "rm", "--path", dir, "--backup-dir", backup, "A")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "A"))
	assert.FileExists(t, filepath.Join(backup, "A.zip"))
}

func TestConfigFileIsApplied(t *testing.T) {
	dir := fixture(t)
	cfgPath := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("dry_run: true\nlog_level: error\n"), 0o644))

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"rm", "--config", cfgPath, "--path", dir, "b"})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, "b"))

	// an explicit flag wins over the file
	cmd = NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"rm", "--config", cfgPath, "--path", dir, "--dry-run=false", "b"})
	require.NoError(t, cmd.Execute())
	assert.NoFileExists(t, filepath.Join(dir, "b"))
}

func TestInvalidDeletePolicy(t *testing.T) {
	_, _, err := execute(t, "", "list", "--path", fixture(t), "--delete-policy", "eventual")
	assert.ErrorContains(t, err, "unknown delete policy")
	assert.Equal(t, 1, ExitCode(err))
}

func TestFlagFixesInvalidConfigValue(t *testing.T) {
	dir := fixture(t)
	cfgPath := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("delete_policy: eager\n"), 0o644))

	run := func(args ...string) error {
		cmd := NewRootCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(append([]string{"list", "--config", cfgPath, "--path", dir, "--log-level", "error"}, args...))
		return cmd.Execute()
	}

	assert.ErrorContains(t, run(), "unknown delete policy")
	assert.NoError(t, run("--delete-policy", "strict"))
}

func TestExplicitConfigMustExist(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"list", "--config", filepath.Join(t.TempDir(), "missing.yaml"), "--path", fixture(t)})
	err := cmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, 1, ExitCode(err))
}

func TestMissingPathExitsWithTwo(t *testing.T) {
	_, _, err := execute(t, "", "list", "--path", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestPathIsAFile(t *testing.T) {
	dir := fixture(t)
	_, _, err := execute(t, "", "list", "--path", filepath.Join(dir, "b"))
	assert.ErrorContains(t, err, "not a directory")
	assert.Equal(t, 2, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New("boom")))
	assert.Equal(t, 2, ExitCode(&ExitError{Code: 2, Err: errors.New("x")}))
}

func TestPartialScanIsReported(t *testing.T) {
	orig := scanDir
	t.Cleanup(func() { scanDir = orig })
	scanDir = func(ctx context.Context, root string, opts scanner.Options) ([]scanner.Entry, error) {
		entries, err := orig(ctx, root, opts)
		require.NoError(t, err)
		return entries, errors.New("stat ghost: permission denied")
	}

	tests := []struct {
		name string
		args []string
	}{
		{"find", []string{"find", "a"}},
		{"rm", []string{"rm", "a"}},
		{"list", []string{"list"}},
		{"menu", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(append([]string{}, tt.args...), "--path", fixture(t))
			out, errOut, _ := execute(t, "5\n", args...)
			assert.Contains(t, errOut, "scan completed with errors: stat ghost: permission denied")
			if tt.name == "rm" {
				assert.Contains(t, out, `File deleted - Filename: "A"`)
			}
		})
	}
}
