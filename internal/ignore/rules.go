// Package ignore compiles gitignore-style exclusion rules into path matchers.
package ignore

import (
	"errors"
	"regexp"
	"strings"
)

const (
	// RulesFileName is the exclusion file consulted in every visited directory.
	RulesFileName = ".gitignore"

	pathSegmentSeparator = "/"
	hiddenEntryPrefix    = "."
	currentDirectory     = "."
	parentDirectory      = ".."
)

// ErrInvalidPattern reports a rule line that cannot be turned into a matcher.
var ErrInvalidPattern = errors.New("invalid ignore pattern")

// Rule is one compiled exclusion pattern. A Rule is immutable after CompilePattern returns it.
type Rule struct {
	source        string
	anchor        string
	directoryOnly bool
	expression    *regexp.Regexp
}

// Source returns the pattern text the rule was compiled from.
func (rule Rule) Source() string {
	return rule.source
}

// Anchor returns the traversal-root-relative directory that declared the rule.
// The empty string denotes the traversal root.
func (rule Rule) Anchor() string {
	return rule.anchor
}

// DirectoryOnly reports whether the pattern carried a trailing slash.
func (rule Rule) DirectoryOnly() bool {
	return rule.directoryOnly
}

// Matches reports whether the slash-normalized relative path is covered by the rule.
// Directory-only rules match the directory itself and anything beneath it, never a file
// that merely shares the directory's name.
func (rule Rule) Matches(relativePath string, isDirectory bool) bool {
	if rule.expression == nil {
		return false
	}
	if !rule.directoryOnly || isDirectory {
		return rule.expression.MatchString(relativePath)
	}
	separatorIndex := strings.LastIndex(relativePath, pathSegmentSeparator)
	if separatorIndex <= 0 {
		return false
	}
	return rule.expression.MatchString(relativePath[:separatorIndex])
}

// RuleSet is an ordered list of rules in effect at one directory depth.
type RuleSet []Rule

// Extend returns a RuleSet holding the receiver's rules followed by additional.
// The receiver is never modified, so sets derived for sibling directories stay independent.
func (ruleSet RuleSet) Extend(additional ...Rule) RuleSet {
	if len(additional) == 0 {
		return ruleSet
	}
	extended := make(RuleSet, 0, len(ruleSet)+len(additional))
	extended = append(extended, ruleSet...)
	return append(extended, additional...)
}

// IsExcluded reports whether relativePath must be omitted from traversal output.
// Any dot-prefixed path segment is excluded regardless of the rule set.
func IsExcluded(relativePath string, isDirectory bool, ruleSet RuleSet) bool {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	if hasHiddenSegment(normalizedPath) {
		return true
	}
	for _, rule := range ruleSet {
		if rule.Matches(normalizedPath, isDirectory) {
			return true
		}
	}
	return false
}

func hasHiddenSegment(normalizedPath string) bool {
	for _, segment := range strings.Split(normalizedPath, pathSegmentSeparator) {
		if segment == currentDirectory || segment == parentDirectory {
			continue
		}
		if strings.HasPrefix(segment, hiddenEntryPrefix) {
			return true
		}
	}
	return false
}
