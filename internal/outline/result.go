// Package outline recovers a document outline (title plus H1-H3 headings with
// page numbers) from the typography and geometry of a parsed PDF layout.
// Embedded bookmarks are never consulted.
package outline

import (
	"errors"
	"strings"
)

// Level is a heading level in the emitted outline.
type Level string

const (
	H1 Level = "H1"
	H2 Level = "H2"
	H3 Level = "H3"
)

// Entry is one outline record.
type Entry struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Result is the complete return value of an extraction.
type Result struct {
	Title   string  `json:"title"`
	Outline []Entry `json:"outline"`
}

// ErrorPrefix marks a Result produced from an unparseable input.
const ErrorPrefix = "Error:"

// ErrUnparseable wraps every failure to read the input document.
var ErrUnparseable = errors.New("outline: unparseable document")

// Failed reports whether the result carries the error marker rather than a
// recovered outline.
func (r Result) Failed() bool {
	return strings.HasPrefix(r.Title, ErrorPrefix)
}

// ErrorResult builds the compatibility result for a failed extraction.
func ErrorResult(err error) Result {
	return Result{Title: ErrorPrefix + " " + err.Error(), Outline: []Entry{}}
}
