package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/scaffold-labs/scaffold/internal/dispatch"
)

// dispatchCommand returns a RunE that hands the command's arguments and
// local flags to its helper package.
func dispatchCommand(c dispatch.Command) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		payload := make([]any, 0, len(args))
		for _, a := range args {
			payload = append(payload, a)
		}
		return newDispatcher().Dispatch(cmd.Context(), c.String(), payload, commandOptions(cmd))
	}
}

// commandOptions collects the command's local flags as camelCased keys
// with typed values.
func commandOptions(cmd *cobra.Command) map[string]any {
	opts := map[string]any{}
	cmd.LocalNonPersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" {
			return
		}
		opts[camelCase(f.Name)] = flagValue(f)
	})
	return opts
}

func flagValue(f *pflag.Flag) any {
	raw := f.Value.String()
	switch f.Value.Type() {
	case "bool":
		if b, err := strconv.ParseBool(raw); err == nil {
			return b
		}
	case "int", "int64":
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case "stringSlice", "stringArray":
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			return sv.GetSlice()
		}
	}
	return raw
}

func camelCase(name string) string {
	parts := strings.Split(name, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
