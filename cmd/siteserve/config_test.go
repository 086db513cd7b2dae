// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"path/filepath"
	"testing"

	"github.com/siteserve/siteserve/internal/cli"
	"github.com/siteserve/siteserve/internal/cli/clitest"
	"github.com/siteserve/siteserve/internal/testutil"
)

func TestConfigFile(t *testing.T) {
	t.Parallel()

	dir := testutil.TempDirFromTxtar(t, `
-- full.toml --
addr = "localhost:4000"
debug = true
access_log = false
sandbox = false
-- partial.toml --
debug = true
-- unknown.toml --
port = 8080
-- broken.toml --
addr = "localhost:4000
-- wrongtype.toml --
debug = "yes"
`)
	root := testutil.TempDirFromTxtar(t, siteTxtar)
	config := func(name string) string { return filepath.Join(dir, name) }

	clitest.Run(t, func(t *testing.T) *app {
		return &app{root: root, noServerStart: true}
	}, map[string]clitest.Case[*app]{
		"all settings from file": {
			Args: []string{"-config", config("full.toml")},
			CheckFunc: func(t *testing.T, a *app) {
				testutil.AssertEqual(t, *a.addr, "localhost:4000")
				testutil.AssertEqual(t, *a.debug, true)
				testutil.AssertEqual(t, *a.accessLog, false)
				testutil.AssertEqual(t, *a.sandbox, false)
			},
		},
		"missing keys keep defaults": {
			Args: []string{"-config", config("partial.toml")},
			CheckFunc: func(t *testing.T, a *app) {
				testutil.AssertEqual(t, *a.addr, ":8080")
				testutil.AssertEqual(t, *a.debug, true)
				testutil.AssertEqual(t, *a.accessLog, true)
			},
		},
		"flag wins over file": {
			Args: []string{"-config", config("full.toml"), "-addr", ":7070", "-debug=false"},
			CheckFunc: func(t *testing.T, a *app) {
				testutil.AssertEqual(t, *a.addr, ":7070")
				testutil.AssertEqual(t, *a.debug, false)
				testutil.AssertEqual(t, *a.accessLog, false)
			},
		},
		"environment wins over file": {
			Args: []string{"-config", config("full.toml")},
			Env:  map[string]string{"SITESERVE_ACCESS_LOG": "true"},
			CheckFunc: func(t *testing.T, a *app) {
				testutil.AssertEqual(t, *a.addr, "localhost:4000")
				testutil.AssertEqual(t, *a.accessLog, true)
			},
		},
		"unknown key": {
			Args:    []string{"-config", config("unknown.toml")},
			WantErr: cli.ErrInvalidArgs,
		},
		"syntax error": {
			Args:    []string{"-config", config("broken.toml")},
			WantErr: cli.ErrInvalidArgs,
		},
		"wrong type": {
			Args:    []string{"-config", config("wrongtype.toml")},
			WantErr: cli.ErrInvalidArgs,
		},
		"missing file": {
			Args:    []string{"-config", config("nope.toml")},
			WantErr: cli.ErrInvalidArgs,
		},
	})
}
