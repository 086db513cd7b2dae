// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import "net/http"

// Values of the CORS headers attached by [CORS].
const (
	AllowOrigin  = "*"
	AllowMethods = "GET, POST, OPTIONS"
	AllowHeaders = "Content-Type"
)

// CORS returns a handler that allows cross-origin access to every response of
// h, including error responses and redirects.
//
// It doesn't answer preflight requests itself; whatever h does with OPTIONS
// requests is sent with the same headers.
func CORS(h http.Handler) http.Handler {
	return OnWriteHeader(h, setCORSHeaders)
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", AllowOrigin)
	h.Set("Access-Control-Allow-Methods", AllowMethods)
	h.Set("Access-Control-Allow-Headers", AllowHeaders)
}
