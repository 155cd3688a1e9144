package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"dir-catalog/internal/catalog"
	"dir-catalog/internal/scanner"
	"dir-catalog/pkg/utils"
)

type status int

const (
	statusScanning status = iota
	statusReady
	statusSearch
	statusDeleteName
	statusConfirm
)

type model struct {
	path      string
	opts      scanner.Options
	catOpts   catalog.Options
	log       *zap.Logger
	sp        spinner.Model
	startedAt time.Time

	st  status
	cat *catalog.Catalog
	err error

	// list view (custom rendering, not using bubbles/list)
	items        []catalog.Record
	cursor       int
	scrollOffset int

	// prompts
	input   textinput.Model
	pending string // name awaiting delete confirmation

	// last outcome shown under the list
	message string
	msgKind msgKind

	keys     keyMap
	help     help.Model
	showHelp bool

	// terminal size
	termW int
	termH int
}

type msgKind int

const (
	msgInfo msgKind = iota
	msgOK
	msgWarn
	msgError
)

func newModel(path string, opts scanner.Options, catOpts catalog.Options, log *zap.Logger) model {
	if log == nil {
		log = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.CharLimit = 255
	ti.Placeholder = "file name"

	return model{
		path:      path,
		opts:      opts,
		catOpts:   catOpts,
		log:       log,
		sp:        sp,
		startedAt: time.Now(),
		st:        statusScanning,
		input:     ti,
		keys:      newKeyMap(),
		help:      help.New(),
	}
}

// Run scans path and opens the interactive catalog view.
func Run(path string, opts scanner.Options, catOpts catalog.Options, log *zap.Logger) error {
	m := newModel(path, opts, catOpts, log)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// messages
type scanDoneMsg struct {
	entries []scanner.Entry
	err     error
}

func scanCmd(path string, opts scanner.Options) tea.Cmd {
	return func() tea.Msg {
		entries, err := scanner.ScanDir(context.Background(), path, opts)
		return scanDoneMsg{entries: entries, err: err}
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(m.sp.Tick, scanCmd(m.path, m.opts))
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termW, m.termH = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.adjustScroll()
		return m, nil

	case spinner.TickMsg:
		if m.st != statusScanning {
			return m, nil
		}
		var cmd tea.Cmd
		m.sp, cmd = m.sp.Update(msg)
		return m, cmd

	case scanDoneMsg:
		m.loadEntries(msg.entries, msg.err)
		return m, nil

	case tea.KeyMsg:
		switch m.st {
		case statusScanning:
			if key.Matches(msg, m.keys.Quit) {
				return m, tea.Quit
			}
			return m, nil
		case statusSearch, statusDeleteName:
			return m.updateInput(msg)
		case statusConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateReady(msg)
		}
	}

	if m.st == statusSearch || m.st == statusDeleteName {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) loadEntries(entries []scanner.Entry, err error) {
	m.cat = catalog.New(m.path, m.catOpts)
	for _, e := range entries {
		m.cat.Append(catalog.NewRecord(e.Name, e.Size))
	}
	m.err = err
	m.st = statusReady
	m.refresh()
	m.log.Info("catalog loaded", zap.String("dir", m.path), zap.Int("files", m.cat.Len()), zap.Duration("elapsed", time.Since(m.startedAt)))
	if err != nil {
		m.setMessage(msgWarn, fmt.Sprintf("Scan completed with errors: %v", err))
	}
}

func (m model) updateReady(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
			m.adjustScroll()
		}
	case key.Matches(msg, m.keys.SortByName):
		m.cat.SortByName()
		m.afterSort()
	case key.Matches(msg, m.keys.SortBySize):
		m.cat.SortBySize()
		m.afterSort()
	case key.Matches(msg, m.keys.Search):
		return m, m.openPrompt(statusSearch, "Search: ")
	case key.Matches(msg, m.keys.DeleteByName):
		return m, m.openPrompt(statusDeleteName, "Delete: ")
	case key.Matches(msg, m.keys.Delete):
		if len(m.items) == 0 {
			return m, nil
		}
		m.pending = m.items[m.cursor].Name
		m.st = statusConfirm
	}
	return m, nil
}

func (m *model) openPrompt(st status, prompt string) tea.Cmd {
	m.st = st
	m.input.Prompt = prompt
	m.input.SetValue("")
	m.input.Focus()
	return textinput.Blink
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyEsc:
		m.input.Blur()
		m.st = statusReady
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		mode := m.st
		name := strings.TrimSpace(m.input.Value())
		m.input.Blur()
		m.st = statusReady
		if name == "" {
			return m, nil
		}
		if mode == statusSearch {
			m.search(name)
			return m, nil
		}
		m.pending = name
		m.st = statusConfirm
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.deletePending()
	case key.Matches(msg, m.keys.Cancel), key.Matches(msg, m.keys.Quit):
		m.pending = ""
		m.st = statusReady
	}
	return m, nil
}

func (m *model) afterSort() {
	m.refresh()
	m.cursor = 0
	m.scrollOffset = 0
	m.log.Info("sorted", zap.Stringer("order", m.cat.Order()), zap.Int("files", m.cat.Len()))
	m.setMessage(msgInfo, fmt.Sprintf("Sorted %d files by %s.", m.cat.Len(), m.cat.Order()))
}

func (m *model) search(name string) {
	rec, ok := m.cat.FindByName(name)
	m.log.Debug("search", zap.String("name", name), zap.Bool("found", ok))
	note := ""
	if m.cat.Order() != catalog.ByName {
		note = " (not sorted by name, press n first)"
	}
	if !ok {
		m.setMessage(msgWarn, fmt.Sprintf("File not found: %s%s", name, note))
		return
	}
	for i, it := range m.items {
		if it.Name == rec.Name {
			m.cursor = i
			m.adjustScroll()
			break
		}
	}
	m.setMessage(msgOK, fmt.Sprintf("File found: %s, %d bytes%s", rec.Name, rec.Size, note))
}

func (m *model) deletePending() {
	name := m.pending
	m.pending = ""
	m.st = statusReady

	rec, err := m.cat.DeleteByName(name)
	var de *catalog.DeleteError
	switch {
	case err == nil:
		m.log.Info("deleted", zap.String("name", rec.Name), zap.Int64("size", rec.Size))
		m.setMessage(msgOK, fmt.Sprintf("Deleted %s, freed %s.", rec.Name, utils.HumanizeBytes(rec.Size)))
	case errors.Is(err, catalog.ErrNotFound):
		m.setMessage(msgWarn, fmt.Sprintf("File not found: %s. Nothing deleted.", name))
	case errors.As(err, &de):
		m.log.Warn("delete failed", zap.String("path", de.Path), zap.Bool("unlinked", de.Unlinked), zap.Error(de.Err))
		suffix := " It is still cataloged."
		if de.Unlinked {
			suffix = " Removed from the catalog; the file may still exist."
		}
		m.setMessage(msgError, fmt.Sprintf("Error deleting %s: %v.%s", rec.Name, de.Err, suffix))
	default:
		m.setMessage(msgError, fmt.Sprintf("Error deleting %s: %v", name, err))
	}
	m.refresh()
}

func (m *model) setMessage(kind msgKind, text string) {
	m.msgKind = kind
	m.message = text
}

// refresh snapshots the catalog for rendering and keeps the cursor in range.
func (m *model) refresh() {
	m.items = m.cat.Records()
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.adjustScroll()
}

func (m model) View() string {
	switch m.st {
	case statusScanning:
		elapsed := time.Since(m.startedAt).Round(time.Millisecond)
		return fmt.Sprintf("Scanning %s... %s  Elapsed: %s\nPress q to quit\n", m.path, m.sp.View(), elapsed)
	}

	var b strings.Builder
	b.WriteString(m.headerText())
	b.WriteString(m.renderList())
	b.WriteString("\n")

	switch m.st {
	case statusSearch, statusDeleteName:
		b.WriteString(m.input.View())
		b.WriteString("\n")
	case statusConfirm:
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Delete %s from disk? (y/N)", m.pending)))
		b.WriteString("\n")
	default:
		if m.message != "" {
			b.WriteString(messageStyle(m.msgKind).Render(m.message))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *model) headerText() string {
	mode := ""
	if m.catOpts.Remover == nil {
		mode = "  [read-only]"
	}
	return headerStyle.Render(fmt.Sprintf("%s  Files: %d  Total: %s  Order: %s  Policy: %s%s",
		m.path, len(m.items), utils.HumanizeBytes(m.cat.TotalSize()), m.cat.Order(), m.cat.Policy(), mode)) + "\n\n"
}

func (m *model) visibleHeight() int {
	// header (2) + status/prompt (2) + help (1..3)
	h := m.termH - 7
	if h < 3 {
		h = 3
	}
	return h
}

func (m *model) renderList() string {
	if len(m.items) == 0 {
		return "No files cataloged.\n"
	}

	var b strings.Builder
	start := m.scrollOffset
	end := start + m.visibleHeight()
	if end > len(m.items) {
		end = len(m.items)
	}

	for i := start; i < end; i++ {
		it := m.items[i]

		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render(">") + " "
		}
		sizeStr := sizeColorStyle(it.Size).Render(fmt.Sprintf("%8s", utils.HumanizeBytesCompact(it.Size)))
		name := it.Name
		if i == m.cursor {
			name = selectedStyle.Render(name)
		}
		b.WriteString(prefix + sizeStr + "  " + name + "\n")
	}
	return b.String()
}

func (m *model) adjustScroll() {
	visible := m.visibleHeight()

	// Scroll down if cursor is below visible area
	if m.cursor >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor - visible + 1
	}
	// Scroll up if cursor is above visible area
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
}

var (
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("99")) // purple
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")) // green
	headerStyle   = lipgloss.NewStyle().Bold(true)
	confirmStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("227")).Bold(true) // yellow
)

func messageStyle(k msgKind) lipgloss.Style {
	switch k {
	case msgOK:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	case msgWarn:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	case msgError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	}
}

// Choose color for size: red > orange > yellow > green > light gray > dark gray
func sizeColorStyle(b int64) lipgloss.Style {
	const (
		KB = 1024
		MB = 1024 * KB
		GB = 1024 * MB
	)
	switch {
	case b >= 1*GB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	case b >= 100*MB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	case b >= 10*MB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	case b >= 1*MB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	case b >= 64*KB:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	}
}
