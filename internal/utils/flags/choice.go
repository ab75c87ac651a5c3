package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderTemplate   = "<%s>"
	choiceSeparatorLiteral      = "|"
	choiceListSeparatorLiteral  = ", "
	choiceUsageEmptyTemplate    = "`%s`"
	choiceUsageFullTemplate     = "`%s` %s"
	unsupportedChoiceTemplate   = "unsupported value %q (expected one of: %s)"
	invalidFlagChoiceTemplate   = "invalid --%s value: %w"
	emptyChoiceValueDescription = "empty"
)

// UnsupportedChoiceError reports a value outside a ChoiceSet.
type UnsupportedChoiceError struct {
	Value   string
	Choices []string
}

func (unsupportedError UnsupportedChoiceError) Error() string {
	return fmt.Sprintf(unsupportedChoiceTemplate, unsupportedError.Value, strings.Join(unsupportedError.Choices, choiceListSeparatorLiteral))
}

// ChoiceSet is a closed, case-insensitive list of accepted flag values.
type ChoiceSet struct {
	defaultChoice string
	choices       []string
}

// NewChoiceSet builds a ChoiceSet. Blank and case-insensitively repeated choices are dropped;
// defaultChoice may be empty when the flag has no default.
func NewChoiceSet(defaultChoice string, choices ...string) ChoiceSet {
	normalizedChoices := make([]string, 0, len(choices))
	seenChoices := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		normalizedChoice := strings.ToLower(strings.TrimSpace(choice))
		if len(normalizedChoice) == 0 {
			continue
		}
		if _, seen := seenChoices[normalizedChoice]; seen {
			continue
		}
		seenChoices[normalizedChoice] = struct{}{}
		normalizedChoices = append(normalizedChoices, normalizedChoice)
	}

	return ChoiceSet{
		defaultChoice: strings.ToLower(strings.TrimSpace(defaultChoice)),
		choices:       normalizedChoices,
	}
}

// Choices returns the accepted values in declaration order.
func (set ChoiceSet) Choices() []string {
	return append([]string{}, set.choices...)
}

// Usage renders a usage string listing the choices with the default capitalized, e.g. "`<debug|INFO>` description".
func (set ChoiceSet) Usage(description string) string {
	displayedChoices := make([]string, 0, len(set.choices))
	for _, choice := range set.choices {
		if choice == set.defaultChoice {
			choice = strings.ToUpper(choice)
		}
		displayedChoices = append(displayedChoices, choice)
	}

	placeholder := fmt.Sprintf(choicePlaceholderTemplate, strings.Join(displayedChoices, choiceSeparatorLiteral))
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// Resolve returns the canonical choice matching value. A blank value resolves to the default
// when one is set.
func (set ChoiceSet) Resolve(value string) (string, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(value))
	if len(normalizedValue) == 0 && len(set.defaultChoice) > 0 {
		return set.defaultChoice, nil
	}
	for _, choice := range set.choices {
		if choice == normalizedValue {
			return choice, nil
		}
	}

	reportedValue := value
	if len(normalizedValue) == 0 {
		reportedValue = emptyChoiceValueDescription
	}
	return "", UnsupportedChoiceError{Value: reportedValue, Choices: set.Choices()}
}

// ResolveFlagChoices resolves every value of the named flag against set.
func ResolveFlagChoices(flagName string, set ChoiceSet, values []string) ([]string, error) {
	resolvedValues := make([]string, 0, len(values))
	for _, value := range values {
		resolvedValue, resolveError := set.Resolve(value)
		if resolveError != nil {
			return nil, fmt.Errorf(invalidFlagChoiceTemplate, flagName, resolveError)
		}
		resolvedValues = append(resolvedValues, resolvedValue)
	}
	return resolvedValues, nil
}
