package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BindCommandToViper binds every flag of the command to viper so values can come from
// flags, the environment or the config file, in that order of precedence.
func BindCommandToViper(cmd *cobra.Command) {
	bindFlagsToViper(cmd.PersistentFlags())
	bindFlagsToViper(cmd.Flags())
}

func bindFlagsToViper(fs *pflag.FlagSet) {
	fs.VisitAll(func(flag *pflag.Flag) {
		_ = viper.BindPFlag(flag.Name, flag)
		_ = viper.BindEnv(flag.Name)

		if !flag.Changed && viper.IsSet(flag.Name) {
			_ = fs.Set(flag.Name, flagValue(viper.Get(flag.Name)))
		}
	})
}

// flagValue renders a viper value the way pflag parses it. Lists from a config file
// become comma separated so slice flags accept them.
func flagValue(val any) string {
	switch v := val.(type) {
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}

		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}
