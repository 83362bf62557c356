// Package types defines every cross‑package data structure used by the fsmcp tools.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	ToolFolderStructure = "get_folder_structure"

	FormatYAML = "yaml"
	FormatTree = "tree"
	FormatJSON = "json"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// TreeOutputNode represents a node of a directory tree rendered in JSON form.
type TreeOutputNode struct {
	Path      string            `json:"path"`
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Collapsed bool              `json:"collapsed,omitempty"`
	Children  []*TreeOutputNode `json:"children,omitempty"`
}

// IsSupportedFormat reports whether format names a known tree rendering.
func IsSupportedFormat(format string) bool {
	switch format {
	case FormatYAML, FormatTree, FormatJSON:
		return true
	default:
		return false
	}
}
