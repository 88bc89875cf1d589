package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName      = "toggle"
	toggleFlagImplicitValue = "true"
	toggleFlagArgumentForm  = "--%s=%s"
	toggleFlagErrorFormat   = "invalid value %q for --%s; accepted values: %s"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// parseToggleLiteral interprets a yes/no style literal. An empty literal means true.
func parseToggleLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	value, known := toggleLiterals[normalized]
	return value, known
}

func acceptedToggleLiterals() string {
	literals := make([]string, 0, len(toggleLiterals))
	for literal := range toggleLiterals {
		literals = append(literals, literal)
	}
	sort.Strings(literals)
	return strings.Join(literals, ", ")
}

// toggleFlag is a boolean pflag.Value accepting yes/no/on/off literals.
type toggleFlag struct {
	target *bool
	name   string
}

func (flag *toggleFlag) Set(input string) error {
	value, known := parseToggleLiteral(input)
	if !known {
		return fmt.Errorf(toggleFlagErrorFormat, input, flag.name, acceptedToggleLiterals())
	}
	*flag.target = value
	return nil
}

func (flag *toggleFlag) String() string {
	if flag == nil || flag.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*flag.target)
}

func (flag *toggleFlag) Type() string {
	return toggleFlagTypeName
}

// bindToggleFlag registers a toggle on flagSet that may be given bare (--name),
// with an equals sign (--name=off) or with a separate literal (--name off).
func bindToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&toggleFlag{target: target, name: name}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = toggleFlagImplicitValue
}

// joinToggleArguments rewrites "--name literal" into "--name=literal" for toggle flags so pflag
// does not treat the literal as a positional argument.
func joinToggleArguments(command *cobra.Command, arguments []string) []string {
	toggles := map[string]struct{}{}
	collectToggleNames(command, toggles)
	if len(toggles) == 0 {
		return arguments
	}
	joined := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == "--" {
			joined = append(joined, arguments[index:]...)
			break
		}
		name, isLongFlag := strings.CutPrefix(current, "--")
		_, isToggle := toggles[name]
		if isLongFlag && isToggle && index+1 < len(arguments) {
			next := arguments[index+1]
			if _, known := toggleLiterals[strings.ToLower(strings.TrimSpace(next))]; known {
				joined = append(joined, fmt.Sprintf(toggleFlagArgumentForm, name, next))
				index++
				continue
			}
		}
		joined = append(joined, current)
	}
	return joined
}

func collectToggleNames(command *cobra.Command, target map[string]struct{}) {
	record := func(flag *pflag.Flag) {
		if flag.Value.Type() == toggleFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(record)
	command.Flags().VisitAll(record)
	for _, child := range command.Commands() {
		collectToggleNames(child, target)
	}
}
