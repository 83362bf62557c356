package commands

import (
	"go.uber.org/zap"

	"github.com/temirov/fsmcp/internal/output"
)

// TreeRenderer renders directory trees using configured options.
// The zero value renders YAML with the built-in and on-disk exclusion rules only.
type TreeRenderer struct {
	// ExtraPatterns are compiled at the traversal root after the built-in rules.
	ExtraPatterns []string
	Format        string
	Palette       output.Palette
	Logger        *zap.Logger
}

func (treeRenderer *TreeRenderer) logger() *zap.Logger {
	if treeRenderer.Logger == nil {
		return zap.NewNop()
	}
	return treeRenderer.Logger
}
