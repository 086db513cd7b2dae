// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package envflag defines flags that can also be set by environment
// variables.
//
// A flag set on the command line always wins. Otherwise, a non-empty
// environment variable overrides the flag's default value when [Apply] is
// called after parsing.
package envflag

import (
	"flag"
	"fmt"
	"strconv"
)

// Type is a constraint that permits only types supported by envflag package.
type Type interface {
	int | int64 | float64 | bool | string
}

// Value defines a flag with the given name, default value and usage that can
// be overridden by the envName environment variable.
func Value[T Type](fs *flag.FlagSet, name, envName string, value T, usage string) *T {
	v := &flagValue[T]{p: new(T), env: envName}
	*v.p = value
	fs.Var(v, name, usage+" Can be overridden by "+envName+" environment variable.")
	return v.p
}

// EnvName returns the name of the environment variable bound to the flag
// name, or an empty string if the flag wasn't defined by this package.
func EnvName(fs *flag.FlagSet, name string) string {
	f := fs.Lookup(name)
	if f == nil {
		return ""
	}
	if ev, ok := f.Value.(envValue); ok {
		return ev.envName()
	}
	return ""
}

// Apply sets flags that weren't set on the command line from their
// environment variables. It must be called after fs.Parse.
func Apply(fs *flag.FlagSet, getenv func(string) string) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var err error
	fs.VisitAll(func(f *flag.Flag) {
		ev, ok := f.Value.(envValue)
		if !ok || set[f.Name] || err != nil {
			return
		}
		s := getenv(ev.envName())
		if s == "" {
			return
		}
		if serr := f.Value.Set(s); serr != nil {
			err = fmt.Errorf("parsing %s=%q: %w", ev.envName(), s, serr)
		}
	})
	return err
}

// Explicit reports which flags of fs were set either on the command line or
// through their environment variables.
func Explicit(fs *flag.FlagSet, getenv func(string) string) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	fs.VisitAll(func(f *flag.Flag) {
		if ev, ok := f.Value.(envValue); ok && getenv(ev.envName()) != "" {
			set[f.Name] = true
		}
	})
	return set
}

type envValue interface {
	flag.Value
	envName() string
}

type flagValue[T Type] struct {
	p   *T
	env string
}

func (f *flagValue[T]) envName() string { return f.env }

// IsBoolFlag makes boolean flags usable as -flag without a value.
func (f *flagValue[T]) IsBoolFlag() bool {
	_, ok := any(f.p).(*bool)
	return ok
}

func (f *flagValue[T]) String() string {
	if f == nil || f.p == nil {
		return ""
	}
	switch v := any(*f.p).(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	}
	return ""
}

func (f *flagValue[T]) Set(s string) error {
	switch p := any(f.p).(type) {
	case *int:
		v, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		*p = v
	case *int64:
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return err
		}
		*p = v
	case *float64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*p = v
	case *bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		*p = v
	case *string:
		*p = s
	}
	return nil
}
