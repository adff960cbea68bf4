package minecraft

import (
	"bytes"
	"encoding/json"
	"strings"
)

// stringSlice is a slice of strings that can be unmarshalled from a string or a []string
type stringSlice []string

func (w *stringSlice) String() string {
	return strings.Join(*w, " ")
}

// UnmarshalJSON is needed because argument sometimes is a string
func (w *stringSlice) UnmarshalJSON(data []byte) (err error) {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '[' {
		var arg []string
		if err := json.Unmarshal(data, &arg); err != nil {
			return err
		}
		*w = arg
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*w = []string{single}
	return nil
}

// Argument is one entry of `arguments.game` or `arguments.jvm`.
// It is either a plain string or an object with rules and one or multiple values.
type Argument struct {
	Value stringSlice `json:"value"`
	Rules []Rule      `json:"rules,omitempty"`
}

// UnmarshalJSON accepts both argument forms
func (a *Argument) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) != 0 && data[0] == '"' {
		var plain string
		if err := json.Unmarshal(data, &plain); err != nil {
			return err
		}
		*a = Argument{Value: stringSlice{plain}}
		return nil
	}

	// alias prevents recursion into this method
	type argument Argument
	var obj argument
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*a = Argument(obj)
	return nil
}

// Arguments is the modern (1.13+) argument system
type Arguments struct {
	Game []Argument `json:"game"`
	JVM  []Argument `json:"jvm"`
}

// resolveArguments returns all values of arguments whose rules allow the current platform
func resolveArguments(args []Argument) []string {
	resolved := make([]string, 0, len(args))
	for _, arg := range args {
		if !Allowed(arg.Rules) {
			continue
		}
		resolved = append(resolved, arg.Value...)
	}
	return resolved
}
