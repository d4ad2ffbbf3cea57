package formats

import (
	"errors"
	"fmt"
)

// OBJ/MTL format errors.
var (
	ErrOpenFailed       = errors.New("cannot open file")
	ErrMalformedNumber  = errors.New("malformed number")
	ErrMissingOperand   = errors.New("missing operand")
	ErrInvalidIndex     = errors.New("invalid OBJ index")
	ErrIndexOutOfRange  = errors.New("OBJ index out of range")
	ErrDegenerateFace   = errors.New("face has fewer than 3 corners")
	ErrMalformedCorner  = errors.New("malformed face corner")
	ErrLineTooLong      = errors.New("line too long")
	ErrMaterialNotFound = errors.New("material library not found")
)

// ParseError is a fatal problem with a mesh or material file.
type ParseError struct {
	Path string // File being parsed
	Line int    // 1-based line number, 0 when not line specific
	Msg  string // Human readable description
	Err  error  // Underlying cause, may be nil
}

func (e *ParseError) Error() string {
	loc := e.Path
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", loc, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", loc, e.Msg)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseWarning is a non-fatal diagnostic produced while parsing.
type ParseWarning struct {
	Path string
	Line int
	Msg  string
}

// String formats the warning as "path:line: msg".
func (w ParseWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", w.Path, w.Line, w.Msg)
	}
	return fmt.Sprintf("%s: %s", w.Path, w.Msg)
}
