// Package security decides which directories tool calls may inspect.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

const (
	errorResolveAllowedFormat = "resolving allowed directory %s: %w"
	errorResolveTargetFormat  = "resolving path %s: %w"
	errorNotAllowedFormat     = "%w: %s"
)

// ErrPathNotAllowed reports a path outside every allowed directory.
var ErrPathNotAllowed = errors.New("path is not within allowed directories")

// Authorizer admits paths that live under one of its allowed directories.
// An Authorizer without directories admits nothing.
type Authorizer struct {
	allowedPrefixes []string
}

// NewAuthorizer resolves allowedDirectories to absolute, separator-terminated prefixes.
func NewAuthorizer(allowedDirectories []string) (Authorizer, error) {
	allowedPrefixes := make([]string, 0, len(allowedDirectories))
	for _, allowedDirectory := range allowedDirectories {
		if strings.TrimSpace(allowedDirectory) == "" {
			continue
		}
		allowedPrefix, normalizeError := normalizedPrefix(allowedDirectory)
		if normalizeError != nil {
			return Authorizer{}, fmt.Errorf(errorResolveAllowedFormat, allowedDirectory, normalizeError)
		}
		allowedPrefixes = append(allowedPrefixes, allowedPrefix)
	}
	return Authorizer{allowedPrefixes: allowedPrefixes}, nil
}

// AllowedDirectories returns the normalized allowed directories without trailing separators.
func (authorizer Authorizer) AllowedDirectories() []string {
	allowedDirectories := make([]string, 0, len(authorizer.allowedPrefixes))
	for _, allowedPrefix := range authorizer.allowedPrefixes {
		allowedDirectories = append(allowedDirectories, strings.TrimSuffix(allowedPrefix, string(filepath.Separator)))
	}
	return allowedDirectories
}

// Authorize returns ErrPathNotAllowed unless targetPath equals or descends from an allowed directory.
// The comparison ignores case.
func (authorizer Authorizer) Authorize(targetPath string) error {
	targetPrefix, normalizeError := normalizedPrefix(targetPath)
	if normalizeError != nil {
		return fmt.Errorf(errorResolveTargetFormat, targetPath, normalizeError)
	}
	lowerTargetPrefix := strings.ToLower(targetPrefix)
	for _, allowedPrefix := range authorizer.allowedPrefixes {
		if strings.HasPrefix(lowerTargetPrefix, strings.ToLower(allowedPrefix)) {
			return nil
		}
	}
	return fmt.Errorf(errorNotAllowedFormat, ErrPathNotAllowed, targetPath)
}

func normalizedPrefix(rawPath string) (string, error) {
	absolutePath, absolutePathError := filepath.Abs(rawPath)
	if absolutePathError != nil {
		return "", absolutePathError
	}
	return strings.TrimRight(absolutePath, `/\`) + string(filepath.Separator), nil
}
