// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package web serves a directory over HTTP with CORS headers attached to
// every response, and contains the server plumbing around it: graceful
// shutdown, access logging and debug endpoints.
package web

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/siteserve/siteserve/internal/cli"
)

// StatusErr is a sentinel error type used to represent HTTP status code errors.
type StatusErr int

// Error implements the error interface.
// It returns a lowercase representation of the HTTP status text for the wrapped code.
func (se StatusErr) Error() string { return strings.ToLower(http.StatusText(int(se))) }

const (
	// ErrBadRequest represents a bad request error (HTTP 400).
	ErrBadRequest StatusErr = http.StatusBadRequest
	// ErrNotFound represents a not found error (HTTP 404).
	ErrNotFound StatusErr = http.StatusNotFound
	// ErrInternalServerError represents an internal server error (HTTP 500).
	ErrInternalServerError StatusErr = http.StatusInternalServerError
	// ErrNotImplemented represents an unsupported request method (HTTP 501).
	ErrNotImplemented StatusErr = http.StatusNotImplemented
)

// RespondJSON marshals the provided response object as JSON and writes it to
// the [http.ResponseWriter].
// It sets the Content-Type header to application/json before marshalling.
// In case of marshalling errors, it writes an internal server error with the error message.
func RespondJSON(w http.ResponseWriter, response any) { respondJSON(w, response, false) }

func respondJSON(w http.ResponseWriter, response any, wroteStatus bool) {
	w.Header().Set("Content-Type", "application/json")
	b, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		if !wroteStatus {
			w.WriteHeader(http.StatusInternalServerError)
		}
		fmt.Fprintf(w, `{
  "status": "error",
  "error": "JSON marshal error: %s"
}`, escapeForJSON(err.Error()))
		return
	}
	w.Write(b)
	w.Write([]byte("\n"))
}

var (
	//go:embed templates/error.html
	errorTemplateStr string
	errorTemplate    = template.Must(template.New("error").Parse(errorTemplateStr))
)

// RespondError writes an error response in HTML format to w and logs the error
// using [cli.Env.Logf] from the request context if error is
// [ErrInternalServerError].
//
// If the error is a [StatusErr] or wraps it, it extracts the HTTP status code and
// sets the response status code accordingly. Otherwise, it sets the response
// status code to [http.StatusInternalServerError].
//
//	// This will set the status code to 501 (Not Implemented).
//	web.RespondError(w, r, fmt.Errorf("%s: %w", r.Method, web.ErrNotImplemented))
func RespondError(w http.ResponseWriter, r *http.Request, err error) {
	var se StatusErr
	if !errors.As(err, &se) {
		se = ErrInternalServerError
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(int(se))
	if se == ErrInternalServerError {
		cli.GetEnv(r.Context()).Logf("Error %d (%s): %v", se, http.StatusText(int(se)), err)
	}

	data := struct {
		StatusCode int
		StatusText string
	}{
		StatusCode: int(se),
		StatusText: http.StatusText(int(se)),
	}
	var buf bytes.Buffer
	if err := errorTemplate.Execute(&buf, data); err != nil {
		// Fallback, if template execution fails.
		fmt.Fprintf(w, "%d %s", data.StatusCode, data.StatusText)
		return
	}
	buf.WriteTo(w)
}

func escapeForJSON(s string) string {
	var sb strings.Builder
	for _, ch := range s {
		switch ch {
		case '\\', '"', '/':
			sb.WriteRune('\\')
			sb.WriteRune(ch)
		case '\b':
			sb.WriteString(`\b`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}
