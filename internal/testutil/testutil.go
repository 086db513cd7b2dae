// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package testutil contains common testing helpers.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"
)

// AssertEqual compares two values and if they differ, fails the test and
// prints the difference between them.
func AssertEqual(t testing.TB, got, want any) {
	t.Helper()
	if diff := cmp.Diff(got, want); diff != "" {
		t.Fatalf("(-got +want):\n%s", diff)
	}
}

// AssertContains fails the test if substr is not present in s.
func AssertContains(t testing.TB, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Fatalf("%q must contain %q", s, substr)
	}
}

// UnmarshalJSON parses the JSON data into V, failing the test in case of failure.
func UnmarshalJSON[V any](t testing.TB, b []byte) V {
	t.Helper()
	var v V
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatal(err)
	}
	return v
}

// ExtractTxtar extracts a txtar archive to dir.
func ExtractTxtar(t testing.TB, ar *txtar.Archive, dir string) {
	t.Helper()
	for _, file := range ar.Files {
		if err := os.MkdirAll(filepath.Join(dir, filepath.Dir(file.Name)), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, file.Name), file.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

// TempDirFromTxtar parses src as a txtar archive, extracts it into a fresh
// temporary directory and returns the directory path.
//
// A file named "dir/" with no content creates an empty directory.
func TempDirFromTxtar(t testing.TB, src string) string {
	t.Helper()
	dir := t.TempDir()
	ar := txtar.Parse([]byte(src))
	var files []txtar.File
	for _, f := range ar.Files {
		if strings.HasSuffix(f.Name, "/") {
			if err := os.MkdirAll(filepath.Join(dir, f.Name), 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		files = append(files, f)
	}
	ar.Files = files
	ExtractTxtar(t, ar, dir)
	return dir
}
