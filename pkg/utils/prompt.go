package utils

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/picogrid/algorithm-simulations/pkg/simulation"
)

// EnvPrefix prefixes control overrides, e.g. ALGOSIM_CONTROL_VALUES. It is
// kept apart from the ALGOSIM_* settings read by pkg/config.
const EnvPrefix = "ALGOSIM_CONTROL_"

// EnvKey returns the environment variable that overrides a control
func EnvKey(controlID string) string {
	key := strings.ToUpper(controlID)
	key = strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(key)
	return EnvPrefix + key
}

// Defaults returns every control's starting value: its configured value,
// replaced by an ALGOSIM_CONTROL_<ID> environment variable when one is set.
func Defaults(controls []simulation.Control) map[string]string {
	values := make(map[string]string, len(controls))
	for _, ctl := range controls {
		values[ctl.ID] = ctl.Value
		if env, ok := os.LookupEnv(EnvKey(ctl.ID)); ok {
			values[ctl.ID] = env
		}
	}
	return values
}

// ValidateControlValue checks value against the control's type
func ValidateControlValue(ctl simulation.Control, value string) error {
	switch ctl.Type {
	case simulation.ControlNumber:
		if strings.TrimSpace(value) == "" {
			return nil
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
			return fmt.Errorf("%s must be a number", label(ctl))
		}
	case simulation.ControlSelect:
		if !slices.Contains(ctl.Options, value) {
			return fmt.Errorf("%s must be one of: %s", label(ctl), strings.Join(ctl.Options, ", "))
		}
	}
	return nil
}

// ParseAssignments turns "id=value" pairs into a map
func ParseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		id, value, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid control assignment %q (want id=value)", p)
		}
		out[strings.TrimSpace(id)] = value
	}
	return out, nil
}

func label(ctl simulation.Control) string {
	if ctl.Label != "" {
		return ctl.Label
	}
	return ctl.ID
}

// PromptForControls asks for every control in turn, offering defaults[id]
// as the starting answer.
func PromptForControls(controls []simulation.Control, defaults map[string]string) (map[string]string, error) {
	result := make(map[string]string, len(controls))

	for _, ctl := range controls {
		value, err := promptForControl(ctl, defaults[ctl.ID])
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", ctl.ID, err)
		}
		result[ctl.ID] = value
	}

	return result, nil
}

func promptForControl(ctl simulation.Control, def string) (string, error) {
	var result string

	if ctl.Type == simulation.ControlSelect {
		prompt := &survey.Select{
			Message: label(ctl) + ":",
			Options: ctl.Options,
		}
		if slices.Contains(ctl.Options, def) {
			prompt.Default = def
		}
		if err := survey.AskOne(prompt, &result); err != nil {
			return "", err
		}
		return result, nil
	}

	prompt := &survey.Input{
		Message: label(ctl) + ":",
		Default: def,
	}
	if ctl.Type == simulation.ControlNumber {
		prompt.Help = "A number"
	}

	validator := func(val interface{}) error {
		str, _ := val.(string)
		return ValidateControlValue(ctl, str)
	}
	if err := survey.AskOne(prompt, &result, survey.WithValidator(validator)); err != nil {
		return "", err
	}
	return result, nil
}

// Choose asks the user to pick one of options
func Choose(message string, options []string, def string) (string, error) {
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if slices.Contains(options, def) {
		prompt.Default = def
	}

	var selected string
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}

// Confirm asks a yes/no question
func Confirm(message string, def bool) (bool, error) {
	var ok bool
	err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &ok)
	return ok, err
}

// Ask reads a free-form answer
func Ask(message, def string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message, Default: def}, &answer)
	return answer, err
}
