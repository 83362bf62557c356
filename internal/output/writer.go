// Package output serializes directory traversal events into textual tree formats.
package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/temirov/fsmcp/internal/types"
)

// ErrUnsupportedFormat reports an unknown tree format name.
var ErrUnsupportedFormat = errors.New("unsupported tree format")

// Entry describes one node delivered to a TreeWriter.
type Entry struct {
	Name string
	// Path is relative to the traversal root in slash form; empty for the root.
	Path  string
	Depth int
	// Last marks the final directory among its siblings.
	Last bool
	// Collapsed marks a directory whose contents were not visited.
	Collapsed bool
}

// TreeWriter receives traversal events in depth-first order.
// Files of a directory always arrive before its subdirectories.
type TreeWriter interface {
	Root(entry Entry) error
	File(entry Entry) error
	EnterDirectory(entry Entry) error
	LeaveDirectory(entry Entry) error
	Flush() error
}

// NewTreeWriter returns the writer registered for format.
func NewTreeWriter(format string, destination io.Writer, palette Palette) (TreeWriter, error) {
	switch format {
	case types.FormatYAML, "":
		return NewYAMLWriter(destination, palette), nil
	case types.FormatTree:
		return NewASCIIWriter(destination, palette), nil
	case types.FormatJSON:
		return NewJSONWriter(destination), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func writeLine(destination io.Writer, format string, arguments ...interface{}) error {
	_, writeError := fmt.Fprintf(destination, format+"\n", arguments...)
	return writeError
}
