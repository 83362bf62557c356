package output

import (
	"io"
	"strings"
)

const yamlIndentUnit = "  "

type yamlWriter struct {
	destination io.Writer
	palette     Palette
}

// NewYAMLWriter renders directories as "name:" keys and files as "- name" items,
// indenting two spaces per depth level.
func NewYAMLWriter(destination io.Writer, palette Palette) TreeWriter {
	return &yamlWriter{destination: destination, palette: palette}
}

func (writer *yamlWriter) Root(entry Entry) error {
	return writeLine(writer.destination, "%s:", writer.palette.directory(entry.Name))
}

func (writer *yamlWriter) File(entry Entry) error {
	return writeLine(writer.destination, "%s- %s", yamlIndent(entry.Depth), writer.palette.file(entry.Name))
}

func (writer *yamlWriter) EnterDirectory(entry Entry) error {
	return writeLine(writer.destination, "%s%s:", yamlIndent(entry.Depth), writer.palette.directory(entry.Name))
}

func (writer *yamlWriter) LeaveDirectory(Entry) error {
	return nil
}

func (writer *yamlWriter) Flush() error {
	return nil
}

func yamlIndent(depth int) string {
	if depth <= 0 {
		return ""
	}
	return strings.Repeat(yamlIndentUnit, depth)
}
