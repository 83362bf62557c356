package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/temirov/fsmcp/internal/output"
	"github.com/temirov/fsmcp/internal/types"
)

// replaySampleTree feeds a fixed event sequence describing:
//
//	proj/readme.md
//	proj/docs/guide.md
//	proj/src/ (collapsed)
func replaySampleTree(testingHandle *testing.T, writer output.TreeWriter) {
	testingHandle.Helper()
	steps := []func() error{
		func() error { return writer.Root(output.Entry{Name: "proj"}) },
		func() error { return writer.File(output.Entry{Name: "readme.md", Path: "readme.md", Depth: 1}) },
		func() error {
			return writer.EnterDirectory(output.Entry{Name: "docs", Path: "docs", Depth: 1})
		},
		func() error { return writer.File(output.Entry{Name: "guide.md", Path: "docs/guide.md", Depth: 2}) },
		func() error { return writer.LeaveDirectory(output.Entry{Name: "docs", Path: "docs", Depth: 1}) },
		func() error {
			return writer.EnterDirectory(output.Entry{Name: "src", Path: "src", Depth: 1, Last: true, Collapsed: true})
		},
		func() error { return writer.LeaveDirectory(output.Entry{Name: "src", Path: "src", Depth: 1, Last: true}) },
		writer.Flush,
	}
	for stepIndex, step := range steps {
		if stepError := step(); stepError != nil {
			testingHandle.Fatalf("step %d failed: %v", stepIndex, stepError)
		}
	}
}

// TestTreeWriters verifies the text produced by each registered format.
func TestTreeWriters(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		format   string
		expected string
	}{
		{
			name:     "yaml",
			format:   types.FormatYAML,
			expected: "proj:\n  - readme.md\n  docs:\n    - guide.md\n  src:\n",
		},
		{
			name:     "default format is yaml",
			format:   "",
			expected: "proj:\n  - readme.md\n  docs:\n    - guide.md\n  src:\n",
		},
		{
			name:     "ascii",
			format:   types.FormatTree,
			expected: "proj/\n|-- readme.md\n|-- docs/\n|   |-- guide.md\n|-- src/\n",
		},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			var buffer bytes.Buffer
			writer, writerError := output.NewTreeWriter(testCase.format, &buffer, output.PlainPalette())
			if writerError != nil {
				testingHandle.Fatalf("NewTreeWriter error: %v", writerError)
			}
			replaySampleTree(testingHandle, writer)
			if buffer.String() != testCase.expected {
				testingHandle.Fatalf("unexpected output:\n%s\nwant:\n%s", buffer.String(), testCase.expected)
			}
		})
	}
}

// TestASCIIWriterClosesLastBranch verifies continuation prefixes below the last directory.
func TestASCIIWriterClosesLastBranch(testingHandle *testing.T) {
	var buffer bytes.Buffer
	writer := output.NewASCIIWriter(&buffer, output.PlainPalette())
	_ = writer.Root(output.Entry{Name: "root"})
	_ = writer.EnterDirectory(output.Entry{Name: "a", Depth: 1})
	_ = writer.EnterDirectory(output.Entry{Name: "b", Depth: 2, Last: true})
	_ = writer.File(output.Entry{Name: "c.txt", Depth: 3})
	_ = writer.LeaveDirectory(output.Entry{Name: "b", Depth: 2})
	_ = writer.LeaveDirectory(output.Entry{Name: "a", Depth: 1})
	expected := "root/\n|-- a/\n|   |-- b/\n|       |-- c.txt\n"
	if buffer.String() != expected {
		testingHandle.Fatalf("unexpected output:\n%s\nwant:\n%s", buffer.String(), expected)
	}
}

// TestJSONWriterBuildsNestedNodes verifies the node structure emitted by the JSON writer.
func TestJSONWriterBuildsNestedNodes(testingHandle *testing.T) {
	var buffer bytes.Buffer
	writer, writerError := output.NewTreeWriter(types.FormatJSON, &buffer, output.PlainPalette())
	if writerError != nil {
		testingHandle.Fatalf("NewTreeWriter error: %v", writerError)
	}
	replaySampleTree(testingHandle, writer)

	var rootNode types.TreeOutputNode
	if decodeError := json.Unmarshal(buffer.Bytes(), &rootNode); decodeError != nil {
		testingHandle.Fatalf("decode: %v", decodeError)
	}
	if rootNode.Name != "proj" || rootNode.Type != types.NodeTypeDirectory {
		testingHandle.Fatalf("unexpected root node: %+v", rootNode)
	}
	if len(rootNode.Children) != 3 {
		testingHandle.Fatalf("expected 3 children, got %d", len(rootNode.Children))
	}
	documentationNode := rootNode.Children[1]
	if documentationNode.Name != "docs" || len(documentationNode.Children) != 1 || documentationNode.Children[0].Path != "docs/guide.md" {
		testingHandle.Fatalf("unexpected docs node: %+v", documentationNode)
	}
	sourceNode := rootNode.Children[2]
	if !sourceNode.Collapsed || len(sourceNode.Children) != 0 {
		testingHandle.Fatalf("expected collapsed src node, got %+v", sourceNode)
	}
}

// TestJSONWriterRejectsUnbalancedEvents verifies that stray leave events are reported.
func TestJSONWriterRejectsUnbalancedEvents(testingHandle *testing.T) {
	writer := output.NewJSONWriter(&bytes.Buffer{})
	if fileError := writer.File(output.Entry{Name: "orphan"}); fileError == nil {
		testingHandle.Fatalf("expected error for file before root")
	}
	_ = writer.Root(output.Entry{Name: "root"})
	if leaveError := writer.LeaveDirectory(output.Entry{Name: "root"}); leaveError == nil {
		testingHandle.Fatalf("expected error when leaving the root")
	}
}

// TestNewTreeWriterRejectsUnknownFormat verifies the sentinel error for unknown formats.
func TestNewTreeWriterRejectsUnknownFormat(testingHandle *testing.T) {
	_, writerError := output.NewTreeWriter("xml", &bytes.Buffer{}, output.PlainPalette())
	if !errors.Is(writerError, output.ErrUnsupportedFormat) {
		testingHandle.Fatalf("expected ErrUnsupportedFormat, got %v", writerError)
	}
}

// TestColorPaletteDecoratesDirectories verifies that directory names gain escape sequences.
func TestColorPaletteDecoratesDirectories(testingHandle *testing.T) {
	palette := output.ColorPalette()
	decorated := palette.Directory("src")
	if !strings.Contains(decorated, "src") || !strings.Contains(decorated, "\x1b[") {
		testingHandle.Fatalf("expected colored directory name, got %q", decorated)
	}
	if palette.File("main.go") != "main.go" {
		testingHandle.Fatalf("expected plain file name")
	}
}
