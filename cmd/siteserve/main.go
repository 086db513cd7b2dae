// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/landlock-lsm/go-landlock/landlock"
	"github.com/mattn/go-isatty"

	"github.com/siteserve/siteserve/internal/cli"
	"github.com/siteserve/siteserve/internal/cli/envflag"
	"github.com/siteserve/siteserve/internal/logger"
	"github.com/siteserve/siteserve/internal/restrict"
	"github.com/siteserve/siteserve/internal/systemd"
	"github.com/siteserve/siteserve/internal/web"
)

func main() { cli.Main(new(app)) }

// logLines is how many recent log lines /debug/log shows.
const logLines = 500

type app struct {
	flags *flag.FlagSet

	// configuration
	addr       *string
	debug      *bool
	accessLog  *bool
	sandbox    *bool
	configPath string

	// used in tests
	root          string         // served instead of the executable's directory
	ready         func(net.Addr) // called after the banner is printed
	noServerStart bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	a.flags = fs
	a.addr = envflag.Value(fs, "addr", "SITESERVE_ADDR", ":8080", "Listen on `host:port`.")
	a.debug = envflag.Value(fs, "debug", "SITESERVE_DEBUG", false, "Serve debug pages at /debug/.")
	a.accessLog = envflag.Value(fs, "access-log", "SITESERVE_ACCESS_LOG", true, "Log every request to stderr.")
	a.sandbox = envflag.Value(fs, "sandbox", "SITESERVE_SANDBOX", true, "Allow only read access to the served directory (Linux only).")
	fs.StringVar(&a.configPath, "config", "", "Read settings from TOML `file`.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)

	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected argument %q", cli.ErrInvalidArgs, env.Args[0])
	}
	if a.configPath != "" {
		if err := a.loadConfig(a.configPath, env.Getenv); err != nil {
			return err
		}
	}

	root := a.root
	if root == "" {
		dir, err := executableDir()
		if err != nil {
			return err
		}
		root = dir
	}
	files, err := web.NewFileServer(root)
	if err != nil {
		return err
	}

	logf := logger.Logf(env.Logf)
	var logs *logger.Buffer
	if *a.debug {
		logs = logger.NewBuffer(logLines)
		logf = logger.Tee(logf, logs)
	}

	mux := http.NewServeMux()
	mux.Handle("/", files)
	if *a.debug {
		web.Debugger(mux).KV("Serving root", files.Root())
		web.Health(mux).Add("root", rootCheck(files.Root()))
	}

	logf("Serving files from %s.", files.Root())

	if *a.sandbox {
		// System MIME types live outside of the root, load them while we
		// still can.
		mime.TypeByExtension(".html")
		restrict.DoUnlessTesting(ctx, landlock.RODirs(files.Root()))
	}

	if a.noServerStart {
		return nil
	}

	go systemd.WatchdogLoop(ctx)
	stop := context.AfterFunc(ctx, func() { systemd.Notify(ctx, systemd.Stopping) })
	defer stop()

	if err := web.ListenAndServe(ctx, &web.ListenAndServeConfig{
		Addr:       *a.addr,
		Mux:        mux,
		Logf:       logf,
		Middleware: web.CORS,
		AccessLog:  *a.accessLog,
		Debuggable: *a.debug,
		Logs:       logs,
		Ready: func(addr net.Addr) {
			printBanner(env.Stdout, port(addr), useColor(env))
			systemd.Notify(ctx, systemd.Ready)
			if a.ready != nil {
				a.ready(addr)
			}
		},
	}); err != nil {
		return err
	}

	fmt.Fprint(env.Stdout, "\n\n🛑 Server stopped.\n")
	return nil
}

// executableDir returns the directory that contains the running program, with
// symlinks resolved.
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating executable: %w", err)
	}
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving executable path: %w", err)
	}
	return filepath.Dir(exe), nil
}

func rootCheck(root string) web.Check {
	return func() error {
		fi, err := os.Stat(root)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			return fmt.Errorf("%s is not a directory", root)
		}
		return nil
	}
}

func port(addr net.Addr) int {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}

func useColor(env *cli.Env) bool {
	if env.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := env.Stdout.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

const rule = "============================================================"

func printBanner(w io.Writer, port int, colored bool) {
	title := color.New(color.FgGreen, color.Bold)
	link := color.New(color.FgCyan, color.Underline)
	for _, c := range []*color.Color{title, link} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	base := fmt.Sprintf("http://localhost:%d", port)

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n", rule)
	title.Fprintln(&sb, "Portfolio Server Running!")
	fmt.Fprintf(&sb, "%s\n", rule)
	fmt.Fprintf(&sb, "\n📱 Portfolio Site:    %s\n", link.Sprint(base))
	fmt.Fprintf(&sb, "🔐 Admin Login:       %s\n", link.Sprint(base+"/login.html"))
	fmt.Fprintf(&sb, "📊 Admin Dashboard:   %s\n", link.Sprint(base+"/dashboard.html"))
	fmt.Fprint(&sb, "\nPress Ctrl+C to stop the server\n\n")
	fmt.Fprintf(&sb, "%s\n\n", rule)
	io.WriteString(w, sb.String())
}
