// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/siteserve/siteserve/internal/cli"
	"github.com/siteserve/siteserve/internal/testutil"
)

func TestRespondError(t *testing.T) {
	cases := map[string]struct {
		err        error
		wantStatus int
		wantInBody string
		wantType   string
		wantToLog  bool
	}{
		"404": {
			err:        ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantInBody: "404 Not Found",
			wantType:   "text/html; charset=utf-8",
		},
		"501 (wrapped)": {
			err:        fmt.Errorf("unsupported method POST: %w", ErrNotImplemented),
			wantStatus: http.StatusNotImplemented,
			wantInBody: "501 Not Implemented",
			wantType:   "text/html; charset=utf-8",
		},
		"500": {
			err:        ErrInternalServerError,
			wantStatus: http.StatusInternalServerError,
			wantInBody: "500 Internal Server Error",
			wantType:   "text/html; charset=utf-8",
			wantToLog:  true,
		},
		"plain error becomes 500": {
			err:        errors.New("disk on fire"),
			wantStatus: http.StatusInternalServerError,
			wantInBody: "500 Internal Server Error",
			wantType:   "text/html; charset=utf-8",
			wantToLog:  true,
		},
		"400 (wrapped)": {
			err:        fmt.Errorf("unknown format %q: %w", "xml", ErrBadRequest),
			wantStatus: http.StatusBadRequest,
			wantInBody: "400 Bad Request",
			wantType:   "text/html; charset=utf-8",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var stderr bytes.Buffer
			ctx := cli.WithEnv(context.Background(), &cli.Env{Stderr: &stderr})
			r := httptest.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
			w := httptest.NewRecorder()

			RespondError(w, r, tc.err)

			testutil.AssertEqual(t, w.Code, tc.wantStatus)
			testutil.AssertEqual(t, w.Header().Get("Content-Type"), tc.wantType)
			testutil.AssertContains(t, w.Body.String(), tc.wantInBody)
			testutil.AssertEqual(t, stderr.Len() > 0, tc.wantToLog)
		})
	}
}

func TestRespondJSON(t *testing.T) {
	w := httptest.NewRecorder()
	RespondJSON(w, map[string]string{"root": "/srv/site"})
	testutil.AssertEqual(t, w.Code, http.StatusOK)
	testutil.AssertEqual(t, w.Body.String(), "{\n  \"root\": \"/srv/site\"\n}\n")

	w = httptest.NewRecorder()
	RespondJSON(w, func() {})
	testutil.AssertEqual(t, w.Code, http.StatusInternalServerError)
	testutil.AssertContains(t, w.Body.String(), "JSON marshal error")
}

func TestEscapeForJSON(t *testing.T) {
	cases := map[string]struct {
		in, want string
	}{
		"empty":     {in: "", want: ""},
		"plain":     {in: "Hello, world!", want: "Hello, world!"},
		"backslash": {in: `C:\site`, want: `C:\\site`},
		"quotes":    {in: `say "hi"`, want: `say \"hi\"`},
		"slash":     {in: "/login.html", want: `\/login.html`},
		"newline":   {in: "a\nb", want: `a\nb`},
		"tab":       {in: "a\tb", want: `a\tb`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, escapeForJSON(tc.in), tc.want)
		})
	}
}
