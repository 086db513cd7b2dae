// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"io"
	"net/http"
	"sync"

	"github.com/felixge/httpsnoop"
)

// OnWriteHeader returns a handler that calls fn with the response headers
// exactly once, right before h sends them.
//
// Headers go out on the first final WriteHeader, Write, ReadFrom or Flush,
// whichever comes first. If h returns without doing any of these, fn is called
// after it returns, before the server writes the implicit 200 response.
// Informational (1xx) responses don't trigger fn.
//
// The writer passed to h implements the same optional interfaces
// ([http.Flusher], [io.ReaderFrom], [http.Hijacker]) as the original one.
func OnWriteHeader(h http.Handler, fn func(http.Header)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var once sync.Once
		finalize := func() { once.Do(func() { fn(w.Header()) }) }

		ww := httpsnoop.Wrap(w, httpsnoop.Hooks{
			WriteHeader: func(next httpsnoop.WriteHeaderFunc) httpsnoop.WriteHeaderFunc {
				return func(code int) {
					if code >= http.StatusOK {
						finalize()
					}
					next(code)
				}
			},
			Write: func(next httpsnoop.WriteFunc) httpsnoop.WriteFunc {
				return func(b []byte) (int, error) {
					finalize()
					return next(b)
				}
			},
			ReadFrom: func(next httpsnoop.ReadFromFunc) httpsnoop.ReadFromFunc {
				return func(src io.Reader) (int64, error) {
					finalize()
					return next(src)
				}
			},
			Flush: func(next httpsnoop.FlushFunc) httpsnoop.FlushFunc {
				return func() {
					finalize()
					next()
				}
			},
		})

		h.ServeHTTP(ww, r)
		finalize()
	})
}
