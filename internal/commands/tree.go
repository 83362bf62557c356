// Package commands contains the core logic for data collection for each command.
package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"syscall"

	"go.uber.org/zap"

	"github.com/temirov/fsmcp/internal/ignore"
	"github.com/temirov/fsmcp/internal/output"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"

	// errorDirectoryNotFoundFormat is used when the root is missing or is not a directory.
	errorDirectoryNotFoundFormat = "%w: %s"

	// errorStatRootFormat is used when the root exists but cannot be inspected.
	errorStatRootFormat = "inspecting %s: %w"

	// errorExtraPatternFormat is used when a caller supplied exclusion pattern is invalid.
	errorExtraPatternFormat = "compiling exclusion pattern %q: %w"

	// errorLoadRulesFormat is used when an exclusion file exists but cannot be read.
	errorLoadRulesFormat = "loading exclusion rules for %s: %w"

	// errorReadDirectoryFormat is used when a directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"

	// errorWriteTreeFormat is used when the tree writer fails.
	errorWriteTreeFormat = "writing tree for %s: %w"

	logMalformedRule = "skipping malformed exclusion rule"
	logPrunedEntry   = "excluded entry"
	logSymlinkCycle  = "not descending into symlink cycle"
)

// ErrDirectoryNotFound reports a traversal root that does not exist or is not a directory.
var ErrDirectoryNotFound = fmt.Errorf("directory not found: %w", fs.ErrNotExist)

// treeWalk carries the call-local state of one rendering.
type treeWalk struct {
	context       context.Context
	writer        output.TreeWriter
	logger        *zap.Logger
	traversalRoot string
	recursive     bool

	// activeDirectories holds the resolved paths on the current descent; a symlink back
	// into one of them is listed but not entered.
	activeDirectories map[string]bool
}

// RenderTree renders rootPath and returns the accumulated text.
func (treeRenderer *TreeRenderer) RenderTree(executionContext context.Context, rootPath string, recursive bool) (string, error) {
	var buffer bytes.Buffer
	if renderError := treeRenderer.RenderTreeTo(executionContext, &buffer, rootPath, recursive); renderError != nil {
		return "", renderError
	}
	return buffer.String(), nil
}

// RenderTreeTo writes the tree of rootPath to destination.
// Nothing is written when the root cannot be validated.
func (treeRenderer *TreeRenderer) RenderTreeTo(executionContext context.Context, destination io.Writer, rootPath string, recursive bool) error {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	rootInfo, statError := os.Stat(absoluteRootPath)
	if statError != nil && !isMissingPathError(statError) {
		return fmt.Errorf(errorStatRootFormat, rootPath, statError)
	}
	if statError != nil || !rootInfo.IsDir() {
		return fmt.Errorf(errorDirectoryNotFoundFormat, ErrDirectoryNotFound, rootPath)
	}

	rootRules, rulesError := treeRenderer.rootRules(absoluteRootPath)
	if rulesError != nil {
		return rulesError
	}

	treeWriter, writerError := output.NewTreeWriter(treeRenderer.Format, destination, treeRenderer.Palette)
	if writerError != nil {
		return writerError
	}

	walk := &treeWalk{
		context:       executionContext,
		writer:        treeWriter,
		logger:        treeRenderer.logger(),
		traversalRoot:     absoluteRootPath,
		recursive:         recursive,
		activeDirectories: map[string]bool{},
	}
	if rootError := treeWriter.Root(output.Entry{Name: filepath.Base(absoluteRootPath)}); rootError != nil {
		return fmt.Errorf(errorWriteTreeFormat, rootPath, rootError)
	}
	if visitError := walk.visit(absoluteRootPath, "", 1, rootRules); visitError != nil {
		return visitError
	}
	if flushError := treeWriter.Flush(); flushError != nil {
		return fmt.Errorf(errorWriteTreeFormat, rootPath, flushError)
	}
	return nil
}

// rootRules returns the built-in rules followed by extra patterns and the root exclusion file.
func (treeRenderer *TreeRenderer) rootRules(absoluteRootPath string) (ignore.RuleSet, error) {
	var additionalRules []ignore.Rule
	for _, extraPattern := range treeRenderer.ExtraPatterns {
		extraRule, compileError := ignore.CompilePattern(extraPattern, "")
		if compileError != nil {
			return nil, fmt.Errorf(errorExtraPatternFormat, extraPattern, compileError)
		}
		additionalRules = append(additionalRules, extraRule)
	}
	fileRules, loadError := loadLocalRules(treeRenderer.logger(), absoluteRootPath, absoluteRootPath)
	if loadError != nil {
		return nil, loadError
	}
	additionalRules = append(additionalRules, fileRules...)
	return ignore.BuiltinRules().Extend(additionalRules...), nil
}

// visit emits the retained children of directoryPath. relativeDirectoryPath is empty for the root.
func (walk *treeWalk) visit(directoryPath string, relativeDirectoryPath string, depth int, ruleSet ignore.RuleSet) error {
	if contextError := walk.context.Err(); contextError != nil {
		return contextError
	}
	if relativeDirectoryPath != "" && ignore.IsExcluded(relativeDirectoryPath, true, ruleSet) {
		return nil
	}

	resolvedPath, resolveError := filepath.EvalSymlinks(directoryPath)
	if resolveError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, directoryPath, resolveError)
	}
	if walk.activeDirectories[resolvedPath] {
		walk.logger.Debug(logSymlinkCycle, zap.String("path", relativeDirectoryPath))
		return nil
	}
	walk.activeDirectories[resolvedPath] = true
	defer delete(walk.activeDirectories, resolvedPath)

	directoryEntries, readDirectoryError := os.ReadDir(directoryPath)
	if readDirectoryError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, directoryPath, readDirectoryError)
	}

	var fileNames []string
	var directoryNames []string
	for _, directoryEntry := range directoryEntries {
		entryName := directoryEntry.Name()
		relativeEntryPath := path.Join(relativeDirectoryPath, entryName)
		isDirectory := entryIsDirectory(directoryPath, directoryEntry)
		if ignore.IsExcluded(relativeEntryPath, isDirectory, ruleSet) {
			walk.logger.Debug(logPrunedEntry, zap.String("path", relativeEntryPath))
			continue
		}
		if isDirectory {
			directoryNames = append(directoryNames, entryName)
		} else {
			fileNames = append(fileNames, entryName)
		}
	}
	sort.Strings(fileNames)
	sort.Strings(directoryNames)

	for _, fileName := range fileNames {
		fileEntry := output.Entry{Name: fileName, Path: path.Join(relativeDirectoryPath, fileName), Depth: depth}
		if fileError := walk.writer.File(fileEntry); fileError != nil {
			return fmt.Errorf(errorWriteTreeFormat, walk.traversalRoot, fileError)
		}
	}

	for directoryIndex, directoryName := range directoryNames {
		childPath := filepath.Join(directoryPath, directoryName)
		directoryEntry := output.Entry{
			Name:      directoryName,
			Path:      path.Join(relativeDirectoryPath, directoryName),
			Depth:     depth,
			Last:      directoryIndex == len(directoryNames)-1,
			Collapsed: !walk.recursive,
		}
		if enterError := walk.writer.EnterDirectory(directoryEntry); enterError != nil {
			return fmt.Errorf(errorWriteTreeFormat, walk.traversalRoot, enterError)
		}
		if walk.recursive {
			localRules, loadError := loadLocalRules(walk.logger, childPath, walk.traversalRoot)
			if loadError != nil {
				return loadError
			}
			if visitError := walk.visit(childPath, directoryEntry.Path, depth+1, ruleSet.Extend(localRules...)); visitError != nil {
				return visitError
			}
		}
		if leaveError := walk.writer.LeaveDirectory(directoryEntry); leaveError != nil {
			return fmt.Errorf(errorWriteTreeFormat, walk.traversalRoot, leaveError)
		}
	}
	return nil
}

// loadLocalRules parses the exclusion file directly inside directoryPath, if any.
func loadLocalRules(logger *zap.Logger, directoryPath string, traversalRoot string) ([]ignore.Rule, error) {
	rulesFilePath := filepath.Join(directoryPath, ignore.RulesFileName)
	localRules, malformedRuleErrors, parseError := ignore.ParseRuleFile(rulesFilePath, directoryPath, traversalRoot)
	for _, malformedRuleError := range malformedRuleErrors {
		logger.Debug(logMalformedRule, zap.String("file", rulesFilePath), zap.Error(malformedRuleError))
	}
	if parseError != nil {
		return nil, fmt.Errorf(errorLoadRulesFormat, directoryPath, parseError)
	}
	return localRules, nil
}

// entryIsDirectory reports whether entry is a directory, following symbolic links.
// A dangling link counts as a file.
func entryIsDirectory(parentPath string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir()
	}
	targetInfo, statError := os.Stat(filepath.Join(parentPath, entry.Name()))
	return statError == nil && targetInfo.IsDir()
}

// isMissingPathError reports stat failures meaning "no directory here".
func isMissingPathError(statError error) bool {
	return errors.Is(statError, fs.ErrNotExist) || errors.Is(statError, syscall.ENOTDIR)
}
