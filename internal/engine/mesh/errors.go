package mesh

import (
	"errors"
	"fmt"
)

// Build errors.
var (
	ErrNilParseResult  = errors.New("nil parse result")
	ErrEmptyVertexPool = errors.New("faces reference an empty position pool")
	ErrIndexOutOfRange = errors.New("corner index out of range")
	ErrUnknownMaterial = errors.New("face references an unknown material")
	ErrReleased        = errors.New("mesh already released")
)

// BuildError reports a parse result that cannot be turned into a mesh.
type BuildError struct {
	Name string // Source of the parse result
	Msg  string
	Err  error
}

func (e *BuildError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("build mesh: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("build mesh %s: %s: %v", e.Name, e.Msg, e.Err)
}

// Unwrap returns the underlying cause.
func (e *BuildError) Unwrap() error {
	return e.Err
}
