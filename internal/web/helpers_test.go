// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func send(t testing.TB, h http.Handler, method, path string, wantStatus int) string {
	t.Helper()
	return do(t, h, httptest.NewRequest(method, path, nil), wantStatus).Body.String()
}

func do(t testing.TB, h http.Handler, req *http.Request, wantStatus int) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if wantStatus != rec.Code {
		t.Fatalf("%s %s: want response code %d, got %d", req.Method, req.URL, wantStatus, rec.Code)
	}

	return rec
}

func assertCORS(t testing.TB, h http.Header) {
	t.Helper()
	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
	for k, v := range want {
		if got := h.Values(k); len(got) != 1 || got[0] != v {
			t.Errorf("header %s: want [%q], got %q", k, v, got)
		}
	}
}
