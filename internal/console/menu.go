// Package console runs the numbered operator menu over a catalog.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"dir-catalog/internal/catalog"
	"dir-catalog/pkg/utils"
)

// ErrInvalidMenuSelection is returned for input that is not a menu number.
var ErrInvalidMenuSelection = errors.New("invalid selection")

// Choice is one menu entry.
type Choice int

const (
	ChoiceSortByName Choice = iota + 1
	ChoiceSortBySize
	ChoiceSearch
	ChoiceDelete
	ChoiceExit
)

var menuText = `
Menu:
1. Sort files alphabetically
2. Sort files by size
3. Search for a filename
4. Delete a file
5. Exit
`

// MenuReader defines interface for reading operator input (for testing)
type MenuReader interface {
	ReadString(delim byte) (string, error)
}

// Menu is the interactive loop. It owns no state besides the catalog it drives.
type Menu struct {
	cat *catalog.Catalog
	in  MenuReader
	out io.Writer
	log *zap.Logger

	bold   *color.Color
	cyan   *color.Color
	green  *color.Color
	yellow *color.Color
	red    *color.Color
}

// NewMenu wires a menu to the given input and output. in is wrapped in a
// bufio.Reader unless it already satisfies MenuReader.
func NewMenu(cat *catalog.Catalog, in io.Reader, out io.Writer, log *zap.Logger) *Menu {
	mr, ok := in.(MenuReader)
	if !ok {
		mr = bufio.NewReader(in)
	}
	return NewMenuWithReader(cat, mr, out, log)
}

// NewMenuWithReader allows injection of reader for testing
func NewMenuWithReader(cat *catalog.Catalog, mr MenuReader, out io.Writer, log *zap.Logger) *Menu {
	if log == nil {
		log = zap.NewNop()
	}
	return &Menu{
		cat:    cat,
		in:     mr,
		out:    out,
		log:    log,
		bold:   color.New(color.Bold),
		cyan:   color.New(color.FgCyan),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		red:    color.New(color.FgRed),
	}
}

// ParseSelection turns a line of input into a Choice.
func ParseSelection(input string) (Choice, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < int(ChoiceSortByName) || n > int(ChoiceExit) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMenuSelection, strings.TrimSpace(input))
	}
	return Choice(n), nil
}

// Run loops until the operator exits or the input ends. Operation failures
// are printed and never end the loop.
func (m *Menu) Run() error {
	for {
		m.bold.Fprint(m.out, menuText)
		m.cyan.Fprint(m.out, "Enter your choice: ")

		line, err := m.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(m.out, "\nExiting program.")
				return nil
			}
			return fmt.Errorf("read selection: %w", err)
		}

		choice, err := ParseSelection(line)
		if err != nil {
			m.log.Debug("rejected menu input", zap.String("input", line))
			m.yellow.Fprintln(m.out, "Invalid choice. Please enter a number between 1 and 5.")
			continue
		}

		if choice == ChoiceExit {
			fmt.Fprintln(m.out, "Exiting program.")
			return nil
		}
		if err := m.dispatch(choice); err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(m.out, "\nExiting program.")
				return nil
			}
			return err
		}
	}
}

func (m *Menu) dispatch(choice Choice) error {
	switch choice {
	case ChoiceSortByName:
		m.cat.SortByName()
		m.log.Info("sorted by name", zap.Int("files", m.cat.Len()))
		m.printList()
	case ChoiceSortBySize:
		m.cat.SortBySize()
		m.log.Info("sorted by size", zap.Int("files", m.cat.Len()))
		m.printList()
	case ChoiceSearch:
		name, err := m.prompt("Enter the filename to search: ")
		if err != nil {
			return err
		}
		m.search(name)
	case ChoiceDelete:
		name, err := m.prompt("Enter the filename to delete: ")
		if err != nil {
			return err
		}
		m.delete(name)
	}
	return nil
}

func (m *Menu) search(name string) {
	if m.cat.Order() != catalog.ByName {
		m.yellow.Fprintln(m.out, "Note: files are not sorted by name (option 1); the search may miss files.")
	}
	rec, ok := m.cat.FindByName(name)
	m.log.Debug("search", zap.String("name", name), zap.Bool("found", ok))
	if !ok {
		fmt.Fprintln(m.out, "File not found.")
		return
	}
	m.green.Fprintf(m.out, "File found - %s\n", FormatRecord(rec))
}

func (m *Menu) delete(name string) {
	rec, err := m.cat.DeleteByName(name)
	var de *catalog.DeleteError
	switch {
	case err == nil:
		m.log.Info("deleted", zap.String("name", rec.Name), zap.Int64("size", rec.Size))
		m.green.Fprintf(m.out, "File deleted - %s\n", FormatRecord(rec))
	case errors.Is(err, catalog.ErrNotFound):
		fmt.Fprintln(m.out, "File not found. Deletion failed.")
	case errors.As(err, &de):
		m.log.Warn("delete failed", zap.String("path", de.Path), zap.Bool("unlinked", de.Unlinked), zap.Error(de.Err))
		m.red.Fprintf(m.out, "Error deleting file: %v\n", err)
		if de.Unlinked {
			m.yellow.Fprintf(m.out, "%q was removed from the catalog but may still exist on disk.\n", rec.Name)
		} else {
			fmt.Fprintf(m.out, "%q is still cataloged.\n", rec.Name)
		}
	default:
		m.red.Fprintf(m.out, "Error deleting file: %v\n", err)
	}
}

func (m *Menu) printList() {
	if m.cat.Len() == 0 {
		fmt.Fprintln(m.out, "No files cataloged.")
		return
	}
	m.cat.Each(func(r catalog.Record) bool {
		fmt.Fprintln(m.out, FormatRecord(r))
		return true
	})
	fmt.Fprintf(m.out, "%d files, %s total\n", m.cat.Len(), utils.HumanizeBytes(m.cat.TotalSize()))
}

func (m *Menu) prompt(label string) (string, error) {
	m.cyan.Fprint(m.out, label)
	return m.readLine()
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned before io.EOF is reported.
func (m *Menu) readLine() (string, error) {
	line, err := m.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// FormatRecord renders one record for listings.
func FormatRecord(r catalog.Record) string {
	return fmt.Sprintf("Filename: %q, Size: %d bytes (%s)", r.Name, r.Size, utils.HumanizeBytes(r.Size))
}
