package parser

import (
	"errors"
	"fmt"
)

// ParseError is the first syntax or resolution error found in a module.
type ParseError struct {
	Message string
	Line    int
	Path    string

	atEnd bool // raised at end of input
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
}

// IsIncomplete reports whether err was raised because input ended early, as
// with an unclosed block. Interactive callers ask for more lines then.
func IsIncomplete(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe) && pe.atEnd
}
