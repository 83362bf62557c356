package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagType            = "bool"
	booleanFlagImplicitValue   = "true"
	booleanFlagAcceptedListing = "true, false, yes, no, on, off, 1, 0"
	invalidBooleanValueFormat  = "invalid boolean value %q; accepted values: %s"
	argumentTerminator         = "--"
	longFlagPrefix             = "--"
)

// booleanLiterals lists every spelling a boolean flag accepts, case-insensitively.
var booleanLiterals = map[string]bool{
	"true": true, "t": true, "yes": true, "y": true, "on": true, "1": true,
	"false": false, "f": false, "no": false, "n": false, "off": false, "0": false,
}

func parseBooleanLiteral(input string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, nil
	}
	value, known := booleanLiterals[normalized]
	if !known {
		return false, fmt.Errorf(invalidBooleanValueFormat, input, booleanFlagAcceptedListing)
	}
	return value, nil
}

func isBooleanLiteral(input string) bool {
	_, known := booleanLiterals[strings.ToLower(strings.TrimSpace(input))]
	return known
}

// booleanFlag is a pflag.Value that accepts yes/no style literals.
type booleanFlag struct {
	target *bool
}

func (flag booleanFlag) Set(input string) error {
	value, parseErr := parseBooleanLiteral(input)
	if parseErr != nil {
		return parseErr
	}
	*flag.target = value
	return nil
}

func (flag booleanFlag) String() string {
	if flag.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*flag.target)
}

func (flag booleanFlag) Type() string {
	return booleanFlagType
}

// registerBooleanFlag defines --name on flagSet. A bare --name means true.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	if flagSet == nil || target == nil {
		return
	}
	*target = defaultValue
	flagSet.Var(booleanFlag{target: target}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = booleanFlagImplicitValue
}

// normalizeBooleanFlagArguments joins "--name literal" into "--name=literal" for boolean flags
// anywhere in the command tree, so "--recursive false" is not read as a path.
// Arguments after "--" are left alone.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	flagNames := map[string]bool{}
	collectBooleanFlagNames(command, flagNames)

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == argumentTerminator {
			return append(normalized, arguments[index:]...)
		}
		flagName, isLongFlag := strings.CutPrefix(argument, longFlagPrefix)
		hasValue := index+1 < len(arguments)
		if isLongFlag && flagNames[flagName] && hasValue && isBooleanLiteral(arguments[index+1]) {
			normalized = append(normalized, argument+"="+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, flagNames map[string]bool) {
	record := func(flag *pflag.Flag) {
		if flag.Value.Type() == booleanFlagType {
			flagNames[flag.Name] = true
		}
	}
	command.PersistentFlags().VisitAll(record)
	command.Flags().VisitAll(record)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, flagNames)
	}
}
