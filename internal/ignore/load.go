package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	commentPrefix  = "#"
	negationPrefix = "!"

	// maximumRuleLineLength bounds a single rule; longer lines are reported as malformed.
	maximumRuleLineLength = 4096
)

// ParseRules reads exclusion lines from reader and compiles them against anchorDirectory.
// Blank lines and comments are skipped. Negation lines are skipped as well: they are
// recognized but never restore an excluded path. Lines that fail to compile or exceed
// maximumRuleLineLength are dropped and reported through the second return value;
// only a read failure is returned as error.
func ParseRules(reader io.Reader, anchorDirectory string) ([]Rule, []error, error) {
	var compiledRules []Rule
	var malformedRuleErrors []error
	lineReader := bufio.NewReader(reader)
	for {
		line, readError := lineReader.ReadString('\n')
		if readError != nil && !errors.Is(readError, io.EOF) {
			return nil, malformedRuleErrors, readError
		}
		rule, keep, lineError := parseRuleLine(line, anchorDirectory)
		if lineError != nil {
			malformedRuleErrors = append(malformedRuleErrors, lineError)
		} else if keep {
			compiledRules = append(compiledRules, rule)
		}
		if readError != nil {
			return compiledRules, malformedRuleErrors, nil
		}
	}
}

// parseRuleLine compiles one raw line. keep is false for lines that carry no rule.
func parseRuleLine(line string, anchorDirectory string) (Rule, bool, error) {
	trimmedLine := strings.TrimSpace(line)
	if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) || strings.HasPrefix(trimmedLine, negationPrefix) {
		return Rule{}, false, nil
	}
	if len(trimmedLine) > maximumRuleLineLength {
		return Rule{}, false, fmt.Errorf("%w: line of %d bytes exceeds %d", ErrInvalidPattern, len(trimmedLine), maximumRuleLineLength)
	}
	rule, compileError := CompilePattern(trimmedLine, anchorDirectory)
	if compileError != nil {
		return Rule{}, false, compileError
	}
	return rule, true, nil
}

// ParseRuleFile compiles the exclusion file at rulesFilePath. Its rules are anchored at
// rulesDirectory expressed relative to traversalRoot. A missing file yields no rules.
//
// #nosec G304
func ParseRuleFile(rulesFilePath string, rulesDirectory string, traversalRoot string) ([]Rule, []error, error) {
	fileHandle, openFileError := os.Open(rulesFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("opening %s: %w", rulesFilePath, openFileError)
	}
	defer fileHandle.Close()

	compiledRules, malformedRuleErrors, parseError := ParseRules(fileHandle, AnchorFor(rulesDirectory, traversalRoot))
	if parseError != nil {
		return nil, malformedRuleErrors, fmt.Errorf("reading %s: %w", rulesFilePath, parseError)
	}
	return compiledRules, malformedRuleErrors, nil
}

// AnchorFor returns directoryPath relative to traversalRoot in slash form,
// or the empty string when both denote the same directory.
func AnchorFor(directoryPath string, traversalRoot string) string {
	relativePath, relativeError := filepath.Rel(filepath.Clean(traversalRoot), filepath.Clean(directoryPath))
	if relativeError != nil || relativePath == currentDirectory {
		return ""
	}
	return filepath.ToSlash(relativePath)
}
