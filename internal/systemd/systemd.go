// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package systemd tells systemd about the state of a service running under it,
// using the sd_notify protocol.
//
// Outside of systemd (NOTIFY_SOCKET is not set) all functions of this package
// do nothing.
package systemd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/siteserve/siteserve/internal/cli"
)

// State defines a sd_notify protocol state.
// See https://www.freedesktop.org/software/systemd/man/sd_notify.html.
type State string

const (
	// Ready tells the service manager that the server accepts connections.
	Ready State = "READY=1"
	// Stopping tells the service manager that the server is shutting down.
	Stopping State = "STOPPING=1"
	// Watchdog updates the watchdog timestamp.
	Watchdog State = "WATCHDOG=1"
)

// Notify sends state to systemd. The socket address is taken from the
// NOTIFY_SOCKET variable of the [cli.Env] carried by ctx, and errors are
// logged to it.
func Notify(ctx context.Context, state State) {
	env := cli.GetEnv(ctx)
	if err := notify(env.Getenv("NOTIFY_SOCKET"), state); err != nil {
		env.Logf("systemd: failed when notifying: %v", err)
	}
}

func notify(socket string, state State) error {
	if socket == "" {
		return nil
	}
	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Net: "unixgram", Name: socket})
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Write([]byte(state))
	return err
}

// WatchdogLoop pings the systemd watchdog at the interval requested in
// WATCHDOG_USEC until ctx is canceled. It should run in a separate goroutine.
func WatchdogLoop(ctx context.Context) {
	env := cli.GetEnv(ctx)
	usec := env.Getenv("WATCHDOG_USEC")
	if usec == "" {
		return
	}

	interval, err := watchdogInterval(usec)
	if err != nil {
		env.Logf("%v", err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			Notify(ctx, Watchdog)
		case <-ctx.Done():
			return
		}
	}
}

// watchdogInterval returns half of the watchdog timeout, as sd_watchdog_enabled(3)
// recommends.
func watchdogInterval(usec string) (time.Duration, error) {
	n, err := strconv.Atoi(usec)
	if err != nil {
		return 0, fmt.Errorf("systemd: parsing WATCHDOG_USEC: %w", err)
	}
	if n <= 0 {
		return 0, errors.New("systemd: WATCHDOG_USEC must be a positive number")
	}
	return time.Duration(n) * time.Microsecond / 2, nil
}
