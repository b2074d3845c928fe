package errors

import (
	"bufio"
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryManifest Category = "manifest"
	CategoryCollapse Category = "collapse"
	CategorySource   Category = "source"
	CategoryOutput   Category = "output"
	CategoryPolicy   Category = "policy"
	CategoryRemote   Category = "remote"
	CategoryConfig   Category = "config"
	CategoryCLI      Category = "cli"
)

// Location represents a position inside an input file.
type Location struct {
	File   string
	Line   int
	Column int
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

// KataError is a structured error with location, suggestions, and documentation.
type KataError struct {
	// Code is a unique error identifier (e.g., "KR101").
	Code string

	// Category is the error type (manifest, source, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the input location where the error occurred.
	Location *Location

	// Context contains surrounding input lines.
	Context []string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *KataError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Wrapped != nil {
		msg += ": " + e.Wrapped.Error()
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *KataError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds an input location to the error.
func (e *KataError) WithLocation(file string, line, column int) *KataError {
	e.Location = &Location{File: file, Line: line, Column: column}
	if line > 0 {
		e.Context = readContextLines(file, line, 5)
	}
	return e
}

// WithFile records the file the error relates to without a line number.
func (e *KataError) WithFile(file string) *KataError {
	e.Location = &Location{File: file}
	return e
}

// WithLocationFromJSON resolves the byte offset of a JSON decoding error
// into a line and column of data.
func (e *KataError) WithLocationFromJSON(file string, data []byte, err error) *KataError {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case stderrors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case stderrors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return e.WithFile(file)
	}
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}

	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	e.Location = &Location{File: file, Line: line, Column: col}
	e.Context = contextFromBytes(data, line, 5)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *KataError) WithSuggestion(s string) *KataError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *KataError) WithDetail(d string) *KataError {
	e.Detail = d
	return e
}

// WithDetailf adds a formatted detailed explanation to the error.
func (e *KataError) WithDetailf(format string, args ...any) *KataError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// Wrap wraps another error.
func (e *KataError) Wrap(err error) *KataError {
	e.Wrapped = err
	return e
}

// readContextLines reads lines around the specified line number from a file.
func readContextLines(filename string, targetLine, contextSize int) []string {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil
	}
	return contextFromBytes(data, targetLine, contextSize)
}

func contextFromBytes(data []byte, targetLine, contextSize int) []string {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
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

// New creates a KataError from a registered error code.
func New(code string) *KataError {
	template, ok := registry[code]
	if !ok {
		return &KataError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &KataError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new KataError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *KataError {
	return &KataError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a KataError.
func FromError(err error, code string) *KataError {
	if err == nil {
		return nil
	}
	var ke *KataError
	if stderrors.As(err, &ke) {
		return ke
	}
	return New(code).Wrap(err)
}

// HasCode reports whether err is a KataError carrying code.
func HasCode(err error, code string) bool {
	var ke *KataError
	if !stderrors.As(err, &ke) {
		return false
	}
	return ke.Code == code
}
