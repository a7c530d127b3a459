package utils

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BindFlags binds a command's flags (and its subcommands', recursively) to a
// viper instance, so values can come from flags, config file or environment.
// Flags the user did not set on the command line pick up the viper value.
func BindFlags(cmd *cobra.Command, v *viper.Viper, envPrefix string) error {
	var bindErr error

	bind := func(flags *pflag.FlagSet) {
		flags.VisitAll(func(f *pflag.Flag) {
			name := f.Name
			if envPrefix != "" {
				name = envPrefix + "." + name
			}
			if err := v.BindPFlag(name, f); err != nil {
				bindErr = err
				return
			}
			if !f.Changed && v.IsSet(name) {
				value := v.Get(name)
				if slice, ok := value.([]interface{}); ok {
					parts := make([]string, len(slice))
					for i, item := range slice {
						parts[i] = fmt.Sprintf("%v", item)
					}
					value = strings.Join(parts, ",")
				}
				if err := flags.Set(f.Name, fmt.Sprintf("%v", value)); err != nil {
					bindErr = err
				}
			}
		})
	}

	bind(cmd.PersistentFlags())
	bind(cmd.Flags())

	for _, sub := range cmd.Commands() {
		if err := BindFlags(sub, v, envPrefix); err != nil {
			return err
		}
	}
	return bindErr
}
