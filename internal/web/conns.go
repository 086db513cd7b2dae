// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/siteserve/siteserve/internal/syncx"
	"github.com/siteserve/siteserve/internal/version"
)

// Conns returns an [http.Handler] that displays the list of active
// HTTP connections of s. It hooks into s.ConnState, keeping a previously set
// callback working, so it must be called before s starts serving.
func Conns(s *http.Server) http.Handler {
	ch := &connsHandler{conns: make(ConnMap)}
	prev := s.ConnState
	s.ConnState = func(c net.Conn, state http.ConnState) {
		ch.connState(c, state)
		if prev != nil {
			prev(c, state)
		}
	}
	return ch
}

// ConnMap represents active connections to the HTTP server, keyed by remote
// address.
type ConnMap map[string]*Conn

// Conn represents an active HTTP connection.
type Conn struct {
	Network string         `json:"network"`
	Addr    string         `json:"addr"`
	Time    time.Time      `json:"time"`
	State   http.ConnState `json:"state"`
}

// connsHandler is a [http.Handler] that displays the list of active connections.
// It's inspired by https://x.com/bradfitz/status/1349825913136017415.
type connsHandler struct {
	mu    sync.Mutex
	conns ConnMap

	tpl syncx.Lazy[*template.Template]
}

// connState implements the http.Server.ConnState callback function.
func (ch *connsHandler) connState(c net.Conn, state http.ConnState) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	addr := c.RemoteAddr().String()
	if state == http.StateClosed || state == http.StateHijacked {
		delete(ch.conns, addr)
		return
	}
	ac, ok := ch.conns[addr]
	if !ok {
		ac = &Conn{
			Network: c.RemoteAddr().Network(),
			Addr:    addr,
			Time:    time.Now(),
		}
		ch.conns[addr] = ac
	}
	ac.State = state
}

func (ch *connsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ch.mu.Lock()
	defer ch.mu.Unlock()

	switch f := r.FormValue("format"); f {
	case "json":
		RespondJSON(w, ch.conns)
		return
	case "", "html":
	default:
		RespondError(w, r, fmt.Errorf("conns: unknown format %q: %w", f, ErrBadRequest))
		return
	}

	tpl, err := ch.tpl.GetErr(func() (*template.Template, error) {
		return template.New("conns").Parse(connsTemplate)
	})
	if err != nil {
		RespondError(w, r, fmt.Errorf("conns: failed to initialize template: %w", err))
		return
	}

	data := struct {
		CmdName    string
		Summary    string
		Conns      []connRow
		Stylesheet string
	}{
		CmdName:    version.CmdName(),
		Summary:    ch.summary(),
		Conns:      ch.rows(),
		Stylesheet: stylesheet(),
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, &data); err != nil {
		RespondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

type connRow struct {
	Addr, Network, State string
	Age                  time.Duration
}

func (ch *connsHandler) rows() []connRow {
	rows := make([]connRow, 0, len(ch.conns))
	for _, c := range ch.conns {
		rows = append(rows, connRow{
			Addr:    c.Addr,
			Network: c.Network,
			State:   c.State.String(),
			Age:     time.Since(c.Time).Round(time.Second),
		})
	}
	slices.SortFunc(rows, func(a, b connRow) int { return strings.Compare(a.Addr, b.Addr) })
	return rows
}

func (ch *connsHandler) summary() string {
	w := "connection"
	if len(ch.conns) != 1 {
		w += "s"
	}
	var idle int
	for _, c := range ch.conns {
		if c.State == http.StateIdle {
			idle++
		}
	}
	return fmt.Sprintf("%d %s, %d idle.", len(ch.conns), w, idle)
}

//go:embed templates/conns.html
var connsTemplate string
