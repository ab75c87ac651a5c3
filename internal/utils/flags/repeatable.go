package flags

import (
	"strings"

	"github.com/spf13/cobra"
)

// RepeatableFlagDefinition captures configuration for a flag that may be given several times.
type RepeatableFlagDefinition struct {
	Name    string
	Usage   string
	Enabled bool
}

// BindRepeatableFlag attaches a repeatable string flag. Values are kept verbatim, commas included.
func BindRepeatableFlag(command *cobra.Command, definition RepeatableFlagDefinition) {
	if command == nil {
		return
	}
	if !definition.Enabled || len(definition.Name) == 0 {
		return
	}
	if command.Flags().Lookup(definition.Name) != nil {
		return
	}
	command.Flags().StringArray(definition.Name, nil, definition.Usage)
}

// RepeatableFlagValues returns the non-blank values supplied for a repeatable flag.
func RepeatableFlagValues(command *cobra.Command, flagName string) []string {
	if command == nil {
		return nil
	}
	rawValues, lookupError := command.Flags().GetStringArray(flagName)
	if lookupError != nil {
		return nil
	}

	values := make([]string, 0, len(rawValues))
	for _, rawValue := range rawValues {
		if len(strings.TrimSpace(rawValue)) == 0 {
			continue
		}
		values = append(values, rawValue)
	}
	return values
}
