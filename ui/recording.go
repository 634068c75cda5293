package ui

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Entry is one recorded UI call.
type Entry struct {
	Method string
	Value  string
}

type sharedState struct {
	mu      sync.Mutex
	entries []Entry
	inputs  []string
	nextIdx int
}

// RecordingUI implements UI for tests. Output is captured as entries and
// input is served from the scripted answers given to NewRecordingUI.
// Running out of answers panics, so a wrong script fails loudly. Children
// made with Indent share the log and the answers.
type RecordingUI struct {
	shared      *sharedState
	indentLevel int
}

func NewRecordingUI(scriptedInputs ...string) *RecordingUI {
	return &RecordingUI{
		shared: &sharedState{inputs: scriptedInputs},
	}
}

func (r *RecordingUI) record(method, value string) {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	r.shared.entries = append(r.shared.entries, Entry{Method: method, Value: value})
}

func (r *RecordingUI) nextInput(caller string) string {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	if r.shared.nextIdx >= len(r.shared.inputs) {
		panic(fmt.Sprintf(
			"RecordingUI: no scripted input left for %s (consumed %d so far)",
			caller, r.shared.nextIdx,
		))
	}
	input := r.shared.inputs[r.shared.nextIdx]
	r.shared.nextIdx++
	return input
}

func (r *RecordingUI) Style(t StyledText) string {
	return t.Text
}

func (r *RecordingUI) Info(format string, args ...any) {
	r.record("Info", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Success(format string, args ...any) {
	r.record("Success", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Warn(format string, args ...any) {
	r.record("Warn", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Error(format string, args ...any) {
	r.record("Error", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Critical(format string, args ...any) {
	r.record("Critical", fmt.Sprintf(format, args...))
}

func (r *RecordingUI) Section(title string) {
	r.record("Section", title)
}

// KeyValue records one "label: value" entry per row.
func (r *RecordingUI) KeyValue(rows [][2]string) {
	for _, row := range rows {
		r.record("KeyValue", row[0]+": "+row[1])
	}
}

// Table records the headers, then one entry per row, cells joined by " | ".
func (r *RecordingUI) Table(headers []string, rows [][]string) {
	r.record("TableHeader", strings.Join(headers, " | "))
	for _, row := range rows {
		r.record("TableRow", strings.Join(row, " | "))
	}
}

func (r *RecordingUI) Spinner(msg string) func() {
	r.record("Spinner", msg)
	return func() {}
}

// Ask panics when the scripted answer fails validation: there is nobody to
// correct it.
func (r *RecordingUI) Ask(validate func(string) error) string {
	input := r.nextInput("Ask")
	r.record("Ask", input)
	if validate != nil {
		if err := validate(input); err != nil {
			panic(fmt.Sprintf(
				"RecordingUI: scripted input %q failed validation in Ask: %s",
				input, err,
			))
		}
	}
	return input
}

func (r *RecordingUI) Password(prompt string) (string, error) {
	r.record("Password", prompt)
	return r.nextInput("Password"), nil
}

// Confirm takes "y"/"yes" as true, "n"/"no" as false and "" as the default.
func (r *RecordingUI) Confirm(prompt string, defaultYes bool) bool {
	r.record("Confirm", prompt)
	input := strings.ToLower(strings.TrimSpace(r.nextInput("Confirm")))
	if input == "" {
		return defaultYes
	}
	return input == "y" || input == "yes"
}

// Choose accepts a 1-based number or the option text.
func (r *RecordingUI) Choose(prompt string, options []string) int {
	r.record("Choose", prompt)
	input := r.nextInput("Choose")
	if idx, err := strconv.Atoi(strings.TrimSpace(input)); err == nil {
		if idx >= 1 && idx <= len(options) {
			return idx - 1
		}
	}
	for i, opt := range options {
		if strings.EqualFold(input, opt) {
			return i
		}
	}
	panic(fmt.Sprintf(
		"RecordingUI: scripted input %q does not match any option in Choose(%q, %v)",
		input, prompt, options,
	))
}

func (r *RecordingUI) Indent() UI {
	return &RecordingUI{
		shared:      r.shared,
		indentLevel: r.indentLevel + 1,
	}
}

func (r *RecordingUI) Entries() []Entry {
	r.shared.mu.Lock()
	defer r.shared.mu.Unlock()
	return append([]Entry{}, r.shared.entries...)
}

func (r *RecordingUI) InfoMessages() []string {
	return r.methodValues("Info")
}

func (r *RecordingUI) ErrorMessages() []string {
	return r.methodValues("Error")
}

func (r *RecordingUI) CriticalMessages() []string {
	return r.methodValues("Critical")
}

func (r *RecordingUI) SuccessMessages() []string {
	return r.methodValues("Success")
}

// HasMessage reports whether any entry contains substr, ignoring case.
func (r *RecordingUI) HasMessage(substr string) bool {
	lower := strings.ToLower(substr)
	for _, e := range r.Entries() {
		if strings.Contains(strings.ToLower(e.Value), lower) {
			return true
		}
	}
	return false
}

func (r *RecordingUI) methodValues(method string) []string {
	var out []string
	for _, e := range r.Entries() {
		if e.Method == method {
			out = append(out, e.Value)
		}
	}
	return out
}
