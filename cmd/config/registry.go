package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Registry declares flags and reads their values back through koanf, so that
// every flag can also be set from a YAML config file.
type Registry struct {
	k  *koanf.Koanf
	fs *pflag.FlagSet
}

func NewRegistry(k *koanf.Koanf, fs *pflag.FlagSet) *Registry {
	return &Registry{
		k:  k,
		fs: fs,
	}
}

// Load reads configFile, if any, and overlays the flags set on the command
// line. Flags left at their defaults do not override file values.
func (r *Registry) Load(configFile string) error {
	if len(configFile) > 0 {
		if err := r.k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config %s: %w", configFile, err)
		}
	}

	if err := r.k.Load(posflag.Provider(r.fs, ".", r.k), nil); err != nil {
		return fmt.Errorf("loading flags: %w", err)
	}
	return nil
}

func (r *Registry) Unmarshal(path string, out any) error {
	if err := r.k.Unmarshal(path, out); err != nil {
		return fmt.Errorf("invalid %s config: %w", path, err)
	}
	return nil
}

func (r *Registry) IntP(name, shorthand string, defaultValue int, help string) func() int {
	return defineParamP(name, shorthand, defaultValue, help, r.fs.IntP, r.k.Int)
}

func (r *Registry) Int(name string, defaultValue int, help string) func() int {
	return defineParam(name, defaultValue, help, r.fs.Int, r.k.Int)
}

func (r *Registry) BoolP(name, shorthand string, defaultValue bool, help string) func() bool {
	return defineParamP(name, shorthand, defaultValue, help, r.fs.BoolP, r.k.Bool)
}

func (r *Registry) Bool(name string, defaultValue bool, help string) func() bool {
	return defineParam(name, defaultValue, help, r.fs.Bool, r.k.Bool)
}

func (r *Registry) StringP(name, shorthand, defaultValue, help string) func() string {
	return defineParamP(name, shorthand, defaultValue, help, r.fs.StringP, r.k.String)
}

func (r *Registry) String(name, defaultValue, help string) func() string {
	return defineParam(name, defaultValue, help, r.fs.String, r.k.String)
}

func (r *Registry) StringsP(name, shorthand string, defaultValue []string, help string) func() []string {
	return defineParamP(name, shorthand, defaultValue, help, r.fs.StringSliceP, r.k.Strings)
}

func (r *Registry) Strings(name string, defaultValue []string, help string) func() []string {
	return defineParam(name, defaultValue, help, r.fs.StringSlice, r.k.Strings)
}

func defineParam[T any](
	name string,
	defaultValue T,
	help string,
	implFlag func(name string, defaultValue T, help string) *T,
	implConf func(name string) T) func() T {
	implFlag(name, defaultValue, help)
	return func() T {
		return implConf(name)
	}
}

func defineParamP[T any](
	name, shorthand string,
	defaultValue T,
	help string,
	implFlag func(name, shorthand string, defaultValue T, help string) *T,
	implConf func(name string) T) func() T {
	implFlag(name, shorthand, defaultValue, help)
	return func() T {
		return implConf(name)
	}
}
