// Package config layers environment variables under the command line flags
// of the tools. A flag given on the command line wins over the environment,
// which wins over the flag's default.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Source resolves option values from a flag set and the environment.
type Source struct {
	v      *viper.Viper
	prefix string
}

// Bind binds every flag in fs to an environment variable named
// PREFIX_FLAG_NAME (dashes become underscores).
func Bind(fs *pflag.FlagSet, envPrefix string) (*Source, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBindFlags, err)
	}
	return &Source{v: v, prefix: envPrefix}, nil
}

// Int returns the value of key as an int.
func (s *Source) Int(key string) (int, error) {
	n, err := cast.ToIntE(s.v.Get(key))
	if err != nil {
		return 0, s.invalid(key, err)
	}
	return n, nil
}

// Bool returns the value of key as a bool.
func (s *Source) Bool(key string) (bool, error) {
	b, err := cast.ToBoolE(s.v.Get(key))
	if err != nil {
		return false, s.invalid(key, err)
	}
	return b, nil
}

// String returns the value of key as a string.
func (s *Source) String(key string) string {
	return s.v.GetString(key)
}

// IsSet reports whether key was given on the command line or in the
// environment.
func (s *Source) IsSet(key string) bool {
	return s.v.IsSet(key)
}

// EnvName returns the environment variable consulted for key.
func (s *Source) EnvName(key string) string {
	return strings.ToUpper(s.prefix + "_" + strings.NewReplacer("-", "_", ".", "_").Replace(key))
}

func (s *Source) invalid(key string, err error) error {
	return fmt.Errorf("%w: --%s (or %s): %w", ErrInvalidValue, key, s.EnvName(key), err)
}
