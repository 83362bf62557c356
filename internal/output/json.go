package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/temirov/fsmcp/internal/types"
)

const jsonIndent = "  "

var errUnbalancedDirectories = errors.New("directory events are unbalanced")

type jsonWriter struct {
	destination io.Writer
	root        *types.TreeOutputNode
	stack       []*types.TreeOutputNode
}

// NewJSONWriter collects events into a nested node and encodes it on Flush.
func NewJSONWriter(destination io.Writer) TreeWriter {
	return &jsonWriter{destination: destination}
}

func (writer *jsonWriter) Root(entry Entry) error {
	writer.root = &types.TreeOutputNode{Name: entry.Name, Path: entry.Path, Type: types.NodeTypeDirectory}
	writer.stack = []*types.TreeOutputNode{writer.root}
	return nil
}

func (writer *jsonWriter) File(entry Entry) error {
	parent, parentError := writer.current()
	if parentError != nil {
		return parentError
	}
	parent.Children = append(parent.Children, &types.TreeOutputNode{Name: entry.Name, Path: entry.Path, Type: types.NodeTypeFile})
	return nil
}

func (writer *jsonWriter) EnterDirectory(entry Entry) error {
	parent, parentError := writer.current()
	if parentError != nil {
		return parentError
	}
	node := &types.TreeOutputNode{Name: entry.Name, Path: entry.Path, Type: types.NodeTypeDirectory, Collapsed: entry.Collapsed}
	parent.Children = append(parent.Children, node)
	writer.stack = append(writer.stack, node)
	return nil
}

func (writer *jsonWriter) LeaveDirectory(Entry) error {
	if len(writer.stack) <= 1 {
		return errUnbalancedDirectories
	}
	writer.stack = writer.stack[:len(writer.stack)-1]
	return nil
}

func (writer *jsonWriter) Flush() error {
	if writer.root == nil {
		return nil
	}
	encoded, encodeError := json.MarshalIndent(writer.root, "", jsonIndent)
	if encodeError != nil {
		return fmt.Errorf("encoding tree: %w", encodeError)
	}
	return writeLine(writer.destination, "%s", encoded)
}

func (writer *jsonWriter) current() (*types.TreeOutputNode, error) {
	if len(writer.stack) == 0 {
		return nil, errUnbalancedDirectories
	}
	return writer.stack[len(writer.stack)-1], nil
}
