// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/siteserve/siteserve/internal/cli"
	"github.com/siteserve/siteserve/internal/cli/envflag"
)

// fileConfig is the format of the file passed with -config. Missing keys keep
// their defaults.
type fileConfig struct {
	Addr      *string `toml:"addr"`
	Debug     *bool   `toml:"debug"`
	AccessLog *bool   `toml:"access_log"`
	Sandbox   *bool   `toml:"sandbox"`
}

// loadConfig applies settings from the TOML file at path to flags that were
// set neither on the command line nor by environment variables.
func (a *app) loadConfig(path string, getenv func(string) string) error {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return fmt.Errorf("%w: reading config: %v", cli.ErrInvalidArgs, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: unknown keys in %s: %s", cli.ErrInvalidArgs, path, strings.Join(keys, ", "))
	}

	explicit := envflag.Explicit(a.flags, getenv)
	apply(explicit["addr"], a.addr, fc.Addr)
	apply(explicit["debug"], a.debug, fc.Debug)
	apply(explicit["access-log"], a.accessLog, fc.AccessLog)
	apply(explicit["sandbox"], a.sandbox, fc.Sandbox)
	return nil
}

func apply[T any](explicit bool, dst, src *T) {
	if !explicit && src != nil {
		*dst = *src
	}
}
