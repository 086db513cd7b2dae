// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"fmt"
	"net/http"
	"path/filepath"
)

// FileServer serves files and directory listings from a fixed root
// directory.
type FileServer struct {
	root string
	fs   http.Handler
}

// NewFileServer returns a FileServer rooted at root.
//
// A relative root is resolved against the working directory once, here; later
// changes of the working directory don't affect which files are served.
func NewFileServer(root string) (*FileServer, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving serving root %q: %w", root, err)
	}
	return &FileServer{
		root: abs,
		fs:   http.FileServer(http.Dir(abs)),
	}, nil
}

// Root returns the absolute path of the directory being served.
func (s *FileServer) Root() string { return s.root }

// ServeHTTP implements the [http.Handler] interface.
//
// GET and HEAD requests are passed to [http.FileServer], which takes care of
// index.html files, directory listings, redirects, conditional and range
// requests. Other methods get a 501 Not Implemented response.
func (s *FileServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		RespondError(w, r, fmt.Errorf("unsupported method %s: %w", r.Method, ErrNotImplemented))
		return
	}
	s.fs.ServeHTTP(w, r)
}
