package cli

import (
	"io"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestBooleanFlagAcceptsLiterals(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name         string
		defaultValue bool
		arguments    []string
		expected     bool
		expectError  bool
	}{
		{name: "default_false", defaultValue: false, expected: false},
		{name: "default_true", defaultValue: true, expected: true},
		{name: "bare_flag", arguments: []string{"--feature"}, expected: true},
		{name: "equals_false", defaultValue: true, arguments: []string{"--feature=false"}, expected: false},
		{name: "separate_no", defaultValue: true, arguments: []string{"--feature", "no"}, expected: false},
		{name: "separate_on_mixed_case", arguments: []string{"--feature", "On"}, expected: true},
		{name: "separate_zero", defaultValue: true, arguments: []string{"--feature", "0"}, expected: false},
		{name: "path_after_flag", arguments: []string{"--feature", "src"}, expected: true},
		{name: "invalid_equals_value", arguments: []string{"--feature=maybe"}, expectError: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			var flagValue bool
			command := &cobra.Command{Use: "flag-test"}
			command.SetOut(io.Discard)
			command.SetErr(io.Discard)
			registerBooleanFlag(command.Flags(), &flagValue, "feature", testCase.defaultValue, "toggle")
			parseErr := command.ParseFlags(normalizeBooleanFlagArguments(command, testCase.arguments))
			if testCase.expectError {
				if parseErr == nil {
					t.Fatalf("expected parse error for %v", testCase.arguments)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if flagValue != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, flagValue)
			}
		})
	}
}

func TestBooleanFlagReportsDefault(t *testing.T) {
	t.Parallel()

	var flagValue bool
	command := &cobra.Command{Use: "flag-test"}
	registerBooleanFlag(command.Flags(), &flagValue, "feature", true, "toggle")
	registered := command.Flags().Lookup("feature")
	if registered.DefValue != "true" || registered.Value.Type() != booleanFlagType {
		t.Fatalf("unexpected flag metadata: default %q type %q", registered.DefValue, registered.Value.Type())
	}
}

func TestNormalizeBooleanFlagArgumentsVisitsSubcommands(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		arguments []string
		expected  []string
	}{
		{
			name:      "subcommand_literal",
			arguments: []string{"tree", "--recursive", "off", "."},
			expected:  []string{"tree", "--recursive=off", "."},
		},
		{
			name:      "copy_then_path",
			arguments: []string{"tree", "--copy", "src"},
			expected:  []string{"tree", "--copy", "src"},
		},
		{
			name:      "copy_literal_then_path",
			arguments: []string{"t", "--copy", "no", "src"},
			expected:  []string{"t", "--copy=no", "src"},
		},
		{
			name:      "string_flags_untouched",
			arguments: []string{"tree", "--format", "yes"},
			expected:  []string{"tree", "--format", "yes"},
		},
		{
			name:      "terminator_stops_rewriting",
			arguments: []string{"init", "--", "--force", "yes"},
			expected:  []string{"init", "--", "--force", "yes"},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			normalized := normalizeBooleanFlagArguments(createRootCommand(nil), testCase.arguments)
			if strings.Join(normalized, " ") != strings.Join(testCase.expected, " ") {
				t.Fatalf("expected %v, got %v", testCase.expected, normalized)
			}
		})
	}
}
