package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/vango-dev/anchor/pkg/anchor"
)

// Category represents the type of error.
type Category string

const (
	CategoryRuntime Category = "runtime"
	CategoryConfig  Category = "config"
	CategoryServer  Category = "server"
	CategoryCLI     Category = "cli"
)

// Location represents a position in a file.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// AnchorError is a structured error with a code, an optional location and a
// fix suggestion.
type AnchorError struct {
	// Code is a unique error identifier (e.g., "A001").
	Code string

	// Category is the error type.
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Subject names what the error is about, e.g. "container 12".
	Subject string

	// Location is the file position where the error occurred.
	Location *Location

	// Context contains the file lines around Location.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Example shows the correct approach.
	Example string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *AnchorError) Error() string {
	msg := e.Message
	if e.Subject != "" {
		msg += " (" + e.Subject + ")"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *AnchorError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds a file location and reads the lines around it.
func (e *AnchorError) WithLocation(file string, line, column int) *AnchorError {
	e.Location = &Location{File: file, Line: line, Column: column}
	if line > 0 {
		e.Context = readContextLines(file, line, 5)
	}
	return e
}

// WithSubject names what the error is about.
func (e *AnchorError) WithSubject(format string, args ...any) *AnchorError {
	e.Subject = fmt.Sprintf(format, args...)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *AnchorError) WithSuggestion(s string) *AnchorError {
	e.Suggestion = s
	return e
}

// WithExample adds a code example to the error.
func (e *AnchorError) WithExample(ex string) *AnchorError {
	e.Example = ex
	return e
}

// WithDetail replaces the registered explanation.
func (e *AnchorError) WithDetail(d string) *AnchorError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *AnchorError) Wrap(err error) *AnchorError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}

	return lines
}

// New creates an AnchorError from a registered error code.
func New(code string) *AnchorError {
	template, ok := registry[code]
	if !ok {
		return &AnchorError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &AnchorError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Newf creates a new AnchorError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *AnchorError {
	return &AnchorError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in an AnchorError. Engine errors are
// mapped to their own codes; anything else gets code.
func FromError(err error, code string) *AnchorError {
	if err == nil {
		return nil
	}
	var ae *AnchorError
	if stderrors.As(err, &ae) {
		return ae
	}
	if engineCode, subject := classify(err); engineCode != "" {
		e := New(engineCode).Wrap(err)
		e.Subject = subject
		return e
	}
	return New(code).Wrap(err)
}

// classify maps engine errors to their codes.
func classify(err error) (code, subject string) {
	var herr *anchor.HandlerError
	switch {
	case stderrors.As(err, &herr):
		return "A001", fmt.Sprintf("subscription %d on container %d", herr.SubscriptionID, herr.ContainerID)
	case stderrors.Is(err, anchor.ErrOrphanSubscription):
		return "A002", ""
	case stderrors.Is(err, anchor.ErrContextDisposed):
		return "A003", ""
	case stderrors.Is(err, anchor.ErrPassDepthExceeded):
		return "A004", ""
	case stderrors.Is(err, anchor.ErrCaptureCollected):
		return "A005", ""
	}
	return "", ""
}
