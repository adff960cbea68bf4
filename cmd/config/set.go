package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jwalton/gchalk"
	"github.com/minepkg/mclaunch/internals/commands"
	"github.com/minepkg/mclaunch/internals/globals"
	"github.com/minepkg/mclaunch/internals/merrors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

func init() {
	cmd := commands.New(&cobra.Command{
		Use:     "set <key> <value>",
		Short:   "Sets a global config value",
		Example: "  mclaunch config set download.parallelism 4\n  mclaunch config set classpath.skip_local_discovery_for forge,neoforge",
		Args:    cobra.ExactArgs(2),
	}, &setRunner{})

	SubCmd.AddCommand(cmd.Command)
}

type setRunner struct{}

func (i *setRunner) RunE(cmd *cobra.Command, args []string) error {
	key := strings.ToLower(args[0])

	entry, ok := config[key]
	if !ok {
		return unknownKey(key)
	}
	newValue, err := parseValue(entry.kind, args[1])
	if err != nil {
		return err
	}

	v := globals.Viper
	previousValue := v.Get(key)
	previousStringValue := fmt.Sprintf("%v", previousValue)
	if previousValue == nil {
		previousStringValue = "(unset)"
	}
	v.Set(key, newValue)

	fmt.Printf(
		"Changing config entry:\n  %s: %s → %v\n",
		key,
		gchalk.Strikethrough(previousStringValue),
		gchalk.Bold(fmt.Sprintf("%v", newValue)),
	)

	target := v.ConfigFileUsed()
	if target == "" {
		target = filepath.Join(globals.Current.Config.DataDir, "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return merrors.IO(filepath.Dir(target), err)
	}
	if err := v.WriteConfigAs(target); err != nil {
		return merrors.IO(target, err)
	}
	return nil
}

func parseValue(kind int, value string) (interface{}, error) {
	switch kind {
	case configKindBool:
		return parseBool(value)
	case configKindString:
		return value, nil
	case configKindInt:
		return strconv.Atoi(value)
	case configKindFloat:
		return strconv.ParseFloat(value, 64)
	case configKindList:
		if strings.TrimSpace(value) == "" {
			return []string{}, nil
		}
		parts := strings.Split(value, ",")
		for n := range parts {
			parts[n] = strings.TrimSpace(parts[n])
		}
		return parts, nil
	}
	return nil, fmt.Errorf("uncovered config value type %d", kind)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value. Use \"true\" or \"false\"")
	}
}

func sortedKeys() []string {
	keys := maps.Keys(config)
	slices.Sort(keys)
	return keys
}
