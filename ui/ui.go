// Package ui is everything ajer shows to, and reads from, its user.
package ui

import "encoding/json"

// Severity is the visual weight of a piece of inline text.
type Severity uint8

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarn
	SeverityError
	SeverityCritical
)

// StyledText pairs a plain string with a Severity. It marshals as the
// plain string.
type StyledText struct {
	Text     string
	Severity Severity
}

func (s StyledText) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Text)
}

// UI is implemented by TerminalUI for real use and RecordingUI for tests.
// Implementations are safe for concurrent use: wallet events may produce
// notices while a command is running.
type UI interface {
	// Style colours t by its severity, or returns the plain text when
	// colours are off.
	Style(t StyledText) string

	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	// Error reports a failure. It doesn't exit.
	Error(format string, args ...any)
	// Critical is for what the user must not miss: precondition failures
	// that block an action and proof of what was sent on chain.
	Critical(format string, args ...any)

	Section(title string)
	KeyValue(rows [][2]string)
	Table(headers []string, rows [][]string)

	// Spinner animates msg until the returned stop function is called.
	Spinner(msg string) func()

	// Ask reads a line, looping until validate accepts it. A nil validate
	// accepts anything.
	Ask(validate func(string) error) string
	// Password reads a line without echoing it.
	Password(prompt string) (string, error)
	Confirm(prompt string, defaultYes bool) bool
	// Choose returns the 0-based index of the picked option.
	Choose(prompt string, options []string) int

	// Indent returns a UI one level deeper sharing the same streams.
	Indent() UI
}
