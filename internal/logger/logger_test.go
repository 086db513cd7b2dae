// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package logger

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/siteserve/siteserve/internal/testutil"
)

func TestLogfWriter(t *testing.T) {
	t.Parallel()

	var message string
	logf := func(format string, args ...any) {
		message = fmt.Sprintf(format, args...)
	}
	n, err := Logf(logf).Write([]byte("GET /login.html 200"))
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, n, len("GET /login.html 200"))
	testutil.AssertEqual(t, message, "GET /login.html 200")
}

func TestTee(t *testing.T) {
	t.Parallel()

	var messages []string
	logf := func(format string, args ...any) {
		messages = append(messages, fmt.Sprintf(format, args...))
	}
	b := NewBuffer(10)
	tee := Tee(logf, b)

	tee("Listening on %s...", "[::]:8080")
	tee("Gracefully shutting down...\n")

	testutil.AssertEqual(t, messages, []string{"Listening on [::]:8080...", "Gracefully shutting down...\n"})
	testutil.AssertEqual(t, b.Lines(), []string{"Listening on [::]:8080...\n", "Gracefully shutting down...\n"})
}

func TestBufferLines(t *testing.T) {
	t.Parallel()

	b := NewBuffer(3)
	for i := 1; i <= 4; i++ {
		fmt.Fprintf(b, "line %d\n", i)
	}
	// Incomplete lines are not visible yet.
	b.Write([]byte("line 5"))
	testutil.AssertEqual(t, b.Lines(), []string{"line 2\n", "line 3\n", "line 4\n"})

	b.Write([]byte(" done\n"))
	testutil.AssertEqual(t, b.Lines(), []string{"line 3\n", "line 4\n", "line 5 done\n"})
}

func TestBufferSubscribe(t *testing.T) {
	t.Parallel()

	b := NewBuffer(5)
	sub, unsubscribe := b.Subscribe()
	defer unsubscribe()

	go fmt.Fprintln(b, "Listening on [::]:8080...")

	select {
	case line := <-sub:
		testutil.AssertEqual(t, line, "Listening on [::]:8080...\n")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a line")
	}
}

func TestBufferServeHTTP(t *testing.T) {
	t.Parallel()

	b := NewBuffer(5)
	fmt.Fprintln(b, "old line")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	r := httptest.NewRequestWithContext(ctx, http.MethodGet, "/debug/log", nil)
	r.Header.Set("Accept", "text/event-stream")
	w := httptest.NewRecorder()

	go func() {
		time.Sleep(100 * time.Millisecond)
		fmt.Fprintln(b, "new line")
	}()
	b.ServeHTTP(w, r)

	testutil.AssertEqual(t, w.Header().Get("Content-Type"), "text/event-stream")
	testutil.AssertContains(t, w.Body.String(), "event: logline\ndata: old line\n\n")
	testutil.AssertContains(t, w.Body.String(), "event: logline\ndata: new line\n\n")
}
