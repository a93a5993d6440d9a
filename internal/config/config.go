// Package config binds command-line flags to SIMONSEQ_* environment
// variables for both binaries.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every flag's environment variable.
const EnvPrefix = "SIMONSEQ"

const logDate = "2006-01-02T15:04:05.000-07:00"

// EnvName returns the environment variable read for flag name.
func EnvName(name string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// Bind normalizes flag names and fills every flag the user did not set
// explicitly from its environment variable. Call it after all flags are
// defined; explicit flags always win over the environment.
func Bind(fs *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})
	return v
}

// Verbose gates debug output behind a --verbose flag.
type Verbose bool

// Logf logs only when verbose output was requested.
func (v Verbose) Logf(format string, args ...any) {
	if !v {
		return
	}
	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}
