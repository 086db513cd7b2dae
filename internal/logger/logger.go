// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package logger defines the printf-like logging type used across the server
// and a ring buffer that keeps recent log lines for the debug page.
package logger

import (
	"container/ring"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Logf is the basic logger type: a printf-like func. Like [log.Printf], the
// format need not end in a newline. Logf functions must be safe for concurrent
// use.
type Logf func(format string, args ...any)

// Write implements the [io.Writer] interface.
func (f Logf) Write(p []byte) (n int, err error) {
	f("%s", p)
	return len(p), nil
}

// Tee returns a Logf that passes every message to logf and also writes it to
// w as a single newline-terminated line.
func Tee(logf Logf, w io.Writer) Logf {
	return func(format string, args ...any) {
		logf(format, args...)
		s := fmt.Sprintf(format, args...)
		if !strings.HasSuffix(s, "\n") {
			s += "\n"
		}
		io.WriteString(w, s)
	}
}

// Buffer is an [io.Writer] that remembers the last lines written to it and
// lets HTTP clients follow new ones. Methods of Buffer are safe for concurrent
// use.
type Buffer struct {
	mu      sync.RWMutex
	size    int
	partial string
	r       *ring.Ring
	subs    map[chan string]struct{}
}

// NewBuffer returns a Buffer that keeps at most size lines.
func NewBuffer(size int) *Buffer {
	return &Buffer{
		size: size,
		r:    ring.New(size),
		subs: make(map[chan string]struct{}),
	}
}

// Write implements the [io.Writer] interface. Incomplete lines are held back
// until their newline arrives.
func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	text := b.partial + string(p)
	for {
		idx := strings.IndexByte(text, '\n')
		if idx == -1 {
			break
		}
		line := text[:idx+1]
		b.r.Value = line
		b.r = b.r.Next()
		for sub := range b.subs {
			select {
			case sub <- line:
			default:
				// Slow subscriber, drop the line.
			}
		}
		text = text[idx+1:]
	}
	b.partial = text
	return len(p), nil
}

// Lines returns the remembered lines, oldest first.
func (b *Buffer) Lines() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lines := make([]string, 0, b.size)
	b.r.Do(func(x any) {
		if x != nil {
			lines = append(lines, x.(string))
		}
	})
	return lines
}

// Subscribe returns a channel that receives every line written after the call.
// The returned function unsubscribes and closes the channel.
func (b *Buffer) Subscribe() (<-chan string, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(chan string, b.size+1)
	b.subs[sub] = struct{}{}

	return sub, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, sub)
		close(sub)
	}
}

// ServeHTTP writes the remembered lines and then follows new ones until the
// client goes away. Clients that accept text/event-stream get server-sent
// events.
func (b *Buffer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sse := strings.Contains(strings.ToLower(r.Header.Get("Accept")), "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	if sse {
		w.Header().Set("Content-Type", "text/event-stream")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}

	sub, unsubscribe := b.Subscribe()
	defer unsubscribe()

	send := func(line string) {
		if sse {
			fmt.Fprintf(w, "event: logline\ndata: %s\n\n", strings.TrimSuffix(line, "\n"))
		} else {
			fmt.Fprint(w, line)
		}
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
	}

	for _, line := range b.Lines() {
		send(line)
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	for {
		select {
		case line := <-sub:
			send(line)
		case <-r.Context().Done():
			return
		}
	}
}
