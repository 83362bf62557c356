package output

import "github.com/fatih/color"

// Palette decorates entry names before they are written.
type Palette struct {
	Directory func(name string) string
	File      func(name string) string
}

// PlainPalette leaves names untouched.
func PlainPalette() Palette {
	return Palette{Directory: identity, File: identity}
}

// ColorPalette highlights directories for terminal output.
func ColorPalette() Palette {
	directoryColor := color.New(color.FgBlue, color.Bold)
	directoryColor.EnableColor()
	return Palette{
		Directory: func(name string) string { return directoryColor.Sprint(name) },
		File:      identity,
	}
}

func (palette Palette) directory(name string) string {
	if palette.Directory == nil {
		return name
	}
	return palette.Directory(name)
}

func (palette Palette) file(name string) string {
	if palette.File == nil {
		return name
	}
	return palette.File(name)
}

func identity(name string) string {
	return name
}
