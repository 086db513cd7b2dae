// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/benbjohnson/hashfs"

	"github.com/siteserve/siteserve/internal/logger"
)

// ListenAndServeConfig is used to configure the HTTP server started by
// [ListenAndServe].
//
// All fields of ListenAndServeConfig can't be modified after [ListenAndServe]
// is called.
type ListenAndServeConfig struct {
	// Addr is a network address to listen on (in the form of "host:port").
	Addr string
	// Mux is a http.ServeMux to serve.
	Mux *http.ServeMux
	// Logf specifies a logger to use. If nil, log.Printf is used.
	Logf logger.Logf
	// Middleware, if set, wraps the whole Mux, including debug handlers.
	Middleware func(http.Handler) http.Handler
	// AccessLog specifies whether every request is logged with Logf.
	AccessLog bool
	// Debuggable specifies whether to register debug handlers at /debug/.
	Debuggable bool
	// DebugAuth specifies an optional function that's invoked on every request to
	// debug handlers at /debug/ to allow or deny access to them. If not provided,
	// all access is allowed.
	DebugAuth func(r *http.Request) bool
	// Logs, if set, is served at /debug/log when Debuggable is true.
	Logs *logger.Buffer
	// Ready, if set, is called with the bound address once the server is
	// accepting connections.
	Ready func(addr net.Addr)
	// ShutdownTimeout is how long in-flight requests are given to complete
	// after ctx is canceled. Connections still open after that are closed
	// forcibly. If zero, 30 seconds is used.
	ShutdownTimeout time.Duration
}

var (
	errNoAddr = errors.New("c.Addr is empty")
	errNilMux = errors.New("c.Mux is nil")
)

const defaultShutdownTimeout = 30 * time.Second

// ListenAndServe starts the HTTP server based on the provided
// [ListenAndServeConfig] and blocks until ctx is canceled, in which case it
// shuts the server down and returns nil, or until serving fails.
//
// On shutdown the contexts of in-flight requests are canceled, so streaming
// handlers like the one at /debug/log return. Requests still running after
// ShutdownTimeout have their connections closed.
//
// The listening socket is closed before ListenAndServe returns.
func ListenAndServe(ctx context.Context, c *ListenAndServeConfig) error {
	if c.Logf == nil {
		c.Logf = log.Printf
	}
	if c.Addr == "" {
		return errNoAddr
	}
	if c.Mux == nil {
		return errNilMux
	}
	timeout := c.ShutdownTimeout
	if timeout == 0 {
		timeout = defaultShutdownTimeout
	}

	l, err := net.Listen("tcp", c.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	defer l.Close()
	c.Logf("Listening on %s...", l.Addr().String())

	// Requests keep the values of ctx (like cli.Env), but are canceled only
	// once Shutdown starts.
	baseCtx, cancelBase := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBase()

	s := &http.Server{
		ErrorLog:    log.New(c.Logf, "", 0),
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	s.RegisterOnShutdown(cancelBase)
	if c.Debuggable {
		initDebugRoutes(c, s)
	}

	var h http.Handler = c.Mux
	if c.Debuggable {
		h = protectDebug(c, h)
	}
	if c.Middleware != nil {
		h = c.Middleware(h)
	}
	if c.AccessLog {
		h = AccessLog(c.Logf, h)
	}
	s.Handler = h

	errCh := make(chan error, 1)
	go func() {
		if err := s.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if c.Ready != nil {
		c.Ready(l.Addr())
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		c.Logf("Gracefully shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.Shutdown(shutdownCtx); err != nil {
			if !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			c.Logf("Requests still running after %v, closing connections.", timeout)
			s.Close()
		}
	}

	return nil
}

func protectDebug(c *ListenAndServeConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/debug/") || c.DebugAuth == nil {
			next.ServeHTTP(w, r)
			return
		}
		// If access denied, pretend that debug endpoints don't exist.
		if !c.DebugAuth(r) {
			RespondError(w, r, ErrNotFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

//go:embed static
var embedFS embed.FS

// StaticFS is a [fs.FS] with the resources used by debug pages, served with
// content-hashed names under /debug/static/.
var StaticFS = hashfs.NewFS(embedFS)

// stylesheet returns the URL path of the debug pages' stylesheet.
func stylesheet() string { return "/debug/" + StaticFS.HashName("static/css/main.css") }

func initDebugRoutes(c *ListenAndServeConfig, s *http.Server) {
	d := Debugger(c.Mux)
	c.Mux.Handle("/debug/static/", http.StripPrefix("/debug", hashfs.FileServer(StaticFS)))
	Health(c.Mux)
	d.Link("/debug/health", "Health checks")
	d.Handle("conns", "Active connections", Conns(s))
	if c.Logs != nil {
		d.Handle("log", "Recent logs", c.Logs)
	}
}
