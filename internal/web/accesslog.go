// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"net"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"

	"github.com/siteserve/siteserve/internal/logger"
)

// AccessLog returns a handler that logs every request served by h, in a form
// like:
//
//	127.0.0.1 "GET /login.html HTTP/1.1" 200 1532 1.2ms
func AccessLog(logf logger.Logf, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(h, w, r)
		logf("%s \"%s %s %s\" %d %d %s",
			remoteHost(r), r.Method, r.URL.RequestURI(), r.Proto,
			m.Code, m.Written, m.Duration.Round(time.Microsecond))
	})
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
