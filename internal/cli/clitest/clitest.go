// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package clitest runs table-driven tests against a [cli.App].
package clitest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/siteserve/siteserve/internal/cli"
)

// Case describes a single invocation of an application and what it must
// produce.
type Case[App cli.App] struct {
	// Args are passed as command-line arguments.
	Args []string
	// Env is the whole environment seen by the application. Variables not in
	// Env are empty.
	Env map[string]string
	// Stdin, if set, is the application's standard input. Otherwise it's empty.
	Stdin io.Reader
	// WantErr, if set, must match the returned error according to errors.Is.
	// If not set, the application must succeed.
	WantErr error
	// WantNothingPrinted requires both stdout and stderr to stay empty.
	WantNothingPrinted bool
	// WantInStdout and WantInStderr are substrings the respective stream must
	// contain.
	WantInStdout, WantInStderr string
	// CheckFunc, if set, is called with the application after it returns.
	CheckFunc func(*testing.T, App)
}

// Run runs every case in its own parallel subtest. Each case gets a fresh
// application from setup.
func Run[App cli.App](t *testing.T, setup func(*testing.T) App, cases map[string]Case[App]) {
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			app := setup(t)
			res := invoke(app, tc.Args, tc.Env, tc.Stdin)

			res.checkErr(t, tc.WantErr)
			res.checkStream(t, "stdout", res.stdout, tc.WantInStdout, tc.WantNothingPrinted)
			res.checkStream(t, "stderr", res.stderr, tc.WantInStderr, tc.WantNothingPrinted)
			if tc.CheckFunc != nil {
				tc.CheckFunc(t, app)
			}
		})
	}
}

// result is what an invocation of an application produced.
type result struct {
	err            error
	stdout, stderr string
}

func invoke(app cli.App, args []string, env map[string]string, stdin io.Reader) result {
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	var stdout, stderr bytes.Buffer
	err := cli.Run(cli.WithEnv(context.Background(), &cli.Env{
		Args:   args,
		Getenv: func(name string) string { return env[name] },
		Stdin:  stdin,
		Stdout: &stdout,
		Stderr: &stderr,
	}), app)
	return result{err: err, stdout: stdout.String(), stderr: stderr.String()}
}

func (r result) checkErr(t *testing.T, want error) {
	t.Helper()
	switch {
	case want == nil && r.err != nil:
		t.Fatalf("unexpected error: %v", r.err)
	case want != nil && r.err == nil:
		t.Fatalf("must fail with error: %v", want)
	case want != nil && !errors.Is(r.err, want):
		t.Fatalf("got error: %v, want %v", r.err, want)
	}
}

func (r result) checkStream(t *testing.T, name, got, want string, wantEmpty bool) {
	t.Helper()
	if wantEmpty && got != "" {
		t.Errorf("%s must be empty, got: %q", name, got)
	}
	if want != "" && !strings.Contains(got, want) {
		t.Errorf("%s must contain %q, got: %q", name, want, got)
	}
}
