// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTempDirFromTxtar(t *testing.T) {
	t.Parallel()

	dir := TempDirFromTxtar(t, `
-- index.html --
<h1>Hello</h1>
-- js/login.js --
console.log("login");
-- empty/ --
`)

	b, err := os.ReadFile(filepath.Join(dir, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	AssertEqual(t, string(b), "<h1>Hello</h1>\n")

	b, err = os.ReadFile(filepath.Join(dir, "js", "login.js"))
	if err != nil {
		t.Fatal(err)
	}
	AssertEqual(t, string(b), "console.log(\"login\");\n")

	fi, err := os.Stat(filepath.Join(dir, "empty"))
	if err != nil {
		t.Fatal(err)
	}
	AssertEqual(t, fi.IsDir(), true)
}
