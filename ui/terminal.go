package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/logrusorgru/aurora"
	runewidth "github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	indentUnit   = "  "
	sectionWidth = 50
	promptPrefix = "> "
)

// TerminalUI writes coloured output to a terminal and reads its answers.
// Each indent level adds two spaces.
type TerminalUI struct {
	indentLevel int
	out         io.Writer
	in          *bufio.Reader
	inFd        int
	au          aurora.Aurora
	mu          *sync.Mutex
}

// NewTerminalUI talks to stdout and stdin. Colours are on when stdout is a
// terminal.
func NewTerminalUI() *TerminalUI {
	return NewTerminalUIWith(os.Stdout, os.Stdin, term.IsTerminal(int(os.Stdout.Fd())))
}

func NewTerminalUIWith(out io.Writer, in *os.File, colors bool) *TerminalUI {
	return &TerminalUI{
		out:  out,
		in:   bufio.NewReader(in),
		inFd: int(in.Fd()),
		au:   aurora.NewAurora(colors),
		mu:   &sync.Mutex{},
	}
}

func (u *TerminalUI) prefix() string {
	return strings.Repeat(indentUnit, u.indentLevel)
}

func (u *TerminalUI) print(format string, args ...any) {
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, format, args...)
}

func (u *TerminalUI) writeLine(line string) {
	u.print("%s%s\n", u.prefix(), line)
}

func (u *TerminalUI) Style(t StyledText) string {
	switch t.Severity {
	case SeveritySuccess:
		return u.au.Green(t.Text).String()
	case SeverityWarn:
		return u.au.Yellow(t.Text).String()
	case SeverityError:
		return u.au.Red(t.Text).String()
	case SeverityCritical:
		return u.au.Bold(t.Text).String()
	default:
		return t.Text
	}
}

func (u *TerminalUI) Info(format string, args ...any) {
	u.writeLine(fmt.Sprintf(format, args...))
}

func (u *TerminalUI) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	u.writeLine(u.au.Green(msg).String())
}

func (u *TerminalUI) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	u.writeLine(u.au.Yellow(msg).String())
}

func (u *TerminalUI) Error(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	u.writeLine(u.au.Red(msg).String())
}

func (u *TerminalUI) Critical(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	u.writeLine(u.au.Bold(msg).String())
}

// Section prints a separator centred around title, between blank lines:
//
//	===== Your names =====
func (u *TerminalUI) Section(title string) {
	titled := " " + title + " "
	bars := sectionWidth - len(titled)
	if bars < 6 {
		bars = 6
	}
	left := bars / 2
	right := bars - left
	line := strings.Repeat("=", left) + titled + strings.Repeat("=", right)
	u.print("\n%s%s\n\n", u.prefix(), line)
}

func (u *TerminalUI) Ask(validate func(string) error) string {
	for {
		u.print("%s%s", u.prefix(), promptPrefix)
		text, _ := u.in.ReadString('\n')
		input := strings.TrimRight(text, "\r\n")
		if validate == nil {
			return input
		}
		err := validate(input)
		if err == nil {
			return input
		}
		u.writeLine(u.au.Red(err.Error()).String())
	}
}

// Password falls back to a plain read when stdin is not a terminal, so
// passwords can be piped in.
func (u *TerminalUI) Password(prompt string) (string, error) {
	u.print("%s%s: ", u.prefix(), prompt)
	if !term.IsTerminal(u.inFd) {
		text, err := u.in.ReadString('\n')
		if err != nil && text == "" {
			return "", fmt.Errorf("couldn't read password: %w", err)
		}
		return strings.TrimRight(text, "\r\n"), nil
	}
	pw, err := term.ReadPassword(u.inFd)
	u.print("\n")
	if err != nil {
		return "", fmt.Errorf("couldn't read password: %w", err)
	}
	return string(pw), nil
}

// Confirm asks a yes/no question. An empty answer takes the default.
func (u *TerminalUI) Confirm(prompt string, defaultYes bool) bool {
	options := "[Y/n]"
	if !defaultYes {
		options = "[y/N]"
	}
	u.Info("%s %s", prompt, options)
	input := strings.ToLower(strings.TrimSpace(u.Ask(func(s string) error {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || s == "y" || s == "n" {
			return nil
		}
		return fmt.Errorf("please enter y or n")
	})))
	if input == "" {
		return defaultYes
	}
	return input == "y"
}

func (u *TerminalUI) Choose(prompt string, options []string) int {
	for i, opt := range options {
		u.Info("%d. %s", i+1, opt)
	}
	u.Info("%s [1-%d]", prompt, len(options))
	input := u.Ask(func(s string) error {
		idx, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || idx < 1 || idx > len(options) {
			return fmt.Errorf("please enter a number between 1 and %d", len(options))
		}
		return nil
	})
	idx, _ := strconv.Atoi(strings.TrimSpace(input))
	return idx - 1
}

// KeyValue renders label / value pairs with the values aligned.
func (u *TerminalUI) KeyValue(rows [][2]string) {
	if len(rows) == 0 {
		return
	}
	maxLabel := 0
	for _, r := range rows {
		if len(r[0]) > maxLabel {
			maxLabel = len(r[0])
		}
	}
	p := u.prefix()
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, r := range rows {
		fmt.Fprintf(u.out, "%s%-*s  %s\n", p, maxLabel, r[0], r[1])
	}
}

// Table renders a bordered table. Without headers only the rows are
// drawn. Cell widths ignore ANSI colour codes.
func (u *TerminalUI) Table(headers []string, rows [][]string) {
	ncols := len(headers)
	for _, r := range rows {
		if len(r) > ncols {
			ncols = len(r)
		}
	}
	if ncols == 0 {
		return
	}
	widths := make([]int, ncols)
	for _, r := range append([][]string{headers}, rows...) {
		for i, cell := range r {
			if w := cellWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	border := func(s string) string { return borderStyle.Render(s) }
	line := func(left, mid, right string) string {
		parts := make([]string, ncols)
		for i, w := range widths {
			parts[i] = strings.Repeat("─", w+2)
		}
		return border(left + strings.Join(parts, mid) + right)
	}
	renderRow := func(cells []string) string {
		parts := make([]string, ncols)
		for i := range parts {
			val := ""
			if i < len(cells) {
				val = cells[i]
			}
			parts[i] = " " + padRight(val, widths[i]) + " "
		}
		return border("│") + strings.Join(parts, border("│")) + border("│")
	}

	p := u.prefix()
	u.mu.Lock()
	defer u.mu.Unlock()
	fmt.Fprintf(u.out, "%s%s\n", p, line("┌", "┬", "┐"))
	if len(headers) > 0 {
		fmt.Fprintf(u.out, "%s%s\n", p, renderRow(headers))
		fmt.Fprintf(u.out, "%s%s\n", p, line("├", "┼", "┤"))
	}
	for _, row := range rows {
		fmt.Fprintf(u.out, "%s%s\n", p, renderRow(row))
	}
	fmt.Fprintf(u.out, "%s%s\n", p, line("└", "┴", "┘"))
}

func cellWidth(s string) int {
	return runewidth.StringWidth(ansi.Strip(s))
}

func padRight(s string, w int) string {
	if visible := cellWidth(s); visible < w {
		return s + strings.Repeat(" ", w-visible)
	}
	return s
}

// Spinner only prints msg once when stdout is not a terminal.
func (u *TerminalUI) Spinner(msg string) func() {
	f, ok := u.out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		u.writeLine(msg)
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(u.out))
	s.Suffix = " " + msg
	s.Start()
	return func() {
		s.Stop()
		// the spinner leaves the cursor on its cleared line
		u.print("\n")
	}
}

func (u *TerminalUI) Indent() UI {
	return &TerminalUI{
		indentLevel: u.indentLevel + 1,
		out:         u.out,
		in:          u.in,
		inFd:        u.inFd,
		au:          u.au,
		mu:          u.mu,
	}
}
