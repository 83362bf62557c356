package output

import (
	"io"
	"strings"
)

const (
	asciiBranch         = "|-- "
	asciiOpenContinue   = "|   "
	asciiClosedContinue = "    "
	asciiDirectoryMark  = "/"
)

type asciiWriter struct {
	destination io.Writer
	palette     Palette
	prefixes    []string
}

// NewASCIIWriter renders a "|-- " style tree with a trailing slash on directory names.
func NewASCIIWriter(destination io.Writer, palette Palette) TreeWriter {
	return &asciiWriter{destination: destination, palette: palette}
}

func (writer *asciiWriter) Root(entry Entry) error {
	writer.prefixes = writer.prefixes[:0]
	return writeLine(writer.destination, "%s%s", writer.palette.directory(entry.Name), asciiDirectoryMark)
}

func (writer *asciiWriter) File(entry Entry) error {
	return writeLine(writer.destination, "%s%s%s", writer.prefix(), asciiBranch, writer.palette.file(entry.Name))
}

func (writer *asciiWriter) EnterDirectory(entry Entry) error {
	if lineError := writeLine(writer.destination, "%s%s%s%s", writer.prefix(), asciiBranch, writer.palette.directory(entry.Name), asciiDirectoryMark); lineError != nil {
		return lineError
	}
	continuation := asciiOpenContinue
	if entry.Last {
		continuation = asciiClosedContinue
	}
	writer.prefixes = append(writer.prefixes, continuation)
	return nil
}

func (writer *asciiWriter) LeaveDirectory(Entry) error {
	if len(writer.prefixes) > 0 {
		writer.prefixes = writer.prefixes[:len(writer.prefixes)-1]
	}
	return nil
}

func (writer *asciiWriter) Flush() error {
	return nil
}

func (writer *asciiWriter) prefix() string {
	return strings.Join(writer.prefixes, "")
}
