package ignore

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	caseInsensitiveFlag   = "(?i)"
	expressionStart       = "^"
	expressionEnd         = "$"
	descendantContinuance = "(?:/.*)?"

	globSegmentsToken = "**/"
	globAnythingToken = "**"
	globSegmentToken  = "*"
	globSingleToken   = "?"

	segmentsExpression = "(?:.*/)?"
	anythingExpression = ".*"
	segmentExpression  = "[^/]*"
	singleExpression   = "[^/]"
)

// CompilePattern turns one exclusion line into a Rule anchored at anchorDirectory,
// the traversal-root-relative directory of the file that declared it.
//
// A trailing slash limits the rule to directories. A leading slash pins the pattern to
// the anchor itself. A pattern without any slash matches that name at any depth below the
// anchor. Any other pattern is resolved as a sub-path of the anchor. Matching ignores case.
func CompilePattern(rawPattern string, anchorDirectory string) (Rule, error) {
	pattern := strings.TrimSpace(rawPattern)
	anchor := strings.Trim(strings.ReplaceAll(anchorDirectory, "\\", pathSegmentSeparator), pathSegmentSeparator)

	directoryOnly := strings.HasSuffix(pattern, pathSegmentSeparator)
	pattern = strings.TrimRight(pattern, pathSegmentSeparator)

	anchorExpression := ""
	if anchor != "" {
		anchorExpression = regexp.QuoteMeta(anchor) + pathSegmentSeparator
	}

	var prefixExpression string
	switch {
	case strings.HasPrefix(pattern, pathSegmentSeparator):
		pattern = strings.TrimLeft(pattern, pathSegmentSeparator)
		prefixExpression = anchorExpression
	case !strings.Contains(pattern, pathSegmentSeparator):
		prefixExpression = anchorExpression + segmentsExpression
	default:
		prefixExpression = anchorExpression
	}

	if pattern == "" {
		return Rule{}, fmt.Errorf("%w: %q is empty after normalization", ErrInvalidPattern, rawPattern)
	}

	source := caseInsensitiveFlag + expressionStart + prefixExpression + translateGlob(pattern) + descendantContinuance + expressionEnd
	expression, compileError := regexp.Compile(source)
	if compileError != nil {
		return Rule{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, rawPattern, compileError)
	}

	return Rule{
		source:        rawPattern,
		anchor:        anchor,
		directoryOnly: directoryOnly,
		expression:    expression,
	}, nil
}

// MustCompilePattern is like CompilePattern but panics when the pattern is invalid.
// It is intended for static rule tables.
func MustCompilePattern(rawPattern string, anchorDirectory string) Rule {
	rule, compileError := CompilePattern(rawPattern, anchorDirectory)
	if compileError != nil {
		panic(compileError)
	}
	return rule
}

// translateGlob escapes literal text and rewrites glob tokens, longest token first.
func translateGlob(pattern string) string {
	var builder strings.Builder
	for index := 0; index < len(pattern); {
		remainder := pattern[index:]
		switch {
		case strings.HasPrefix(remainder, globSegmentsToken):
			builder.WriteString(segmentsExpression)
			index += len(globSegmentsToken)
		case strings.HasPrefix(remainder, globAnythingToken):
			builder.WriteString(anythingExpression)
			index += len(globAnythingToken)
		case strings.HasPrefix(remainder, globSegmentToken):
			builder.WriteString(segmentExpression)
			index += len(globSegmentToken)
		case strings.HasPrefix(remainder, globSingleToken):
			builder.WriteString(singleExpression)
			index += len(globSingleToken)
		default:
			literalEnd := strings.IndexAny(remainder, globSegmentToken+globSingleToken)
			if literalEnd < 0 {
				literalEnd = len(remainder)
			}
			builder.WriteString(regexp.QuoteMeta(remainder[:literalEnd]))
			index += literalEnd
		}
	}
	return builder.String()
}
