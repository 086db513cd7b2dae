// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build ignore

// copyright.go adds copyright header to each Go file that lacks one.

package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

const tmpl = `// © %d Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

`

// Files that carry the header of the project they were adapted from.
var exclusions = []string{
	"internal/web/debug.go",
	"internal/web/debug_test.go",
}

func isExcluded(path string) bool {
	for _, ex := range exclusions {
		if strings.HasSuffix(path, ex) {
			return true
		}
	}
	return false
}

func main() {
	if err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// Directories starting with _ are ignored by the go tool.
		if d.IsDir() && path != "." && strings.HasPrefix(d.Name(), "_") {
			return filepath.SkipDir
		}
		if d.IsDir() || filepath.Ext(path) != ".go" || isExcluded(path) {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if bytes.HasPrefix(content, []byte("// ©")) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		fmt.Fprintf(&buf, tmpl, info.ModTime().Year())
		buf.Write(content)

		return os.WriteFile(path, buf.Bytes(), 0o644)
	}); err != nil {
		log.Fatal(err)
	}
}
