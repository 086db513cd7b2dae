// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package version provides the version and build information.
package version

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

// Info is the version and build information of the current binary.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`   // BuildInfo's vcs.revision
	BuiltAt string `json:"built_at"` // BuildInfo's vcs.time
	Go      string `json:"go"`       // runtime.Version()
	OS      string `json:"os"`       // runtime.GOOS
	Arch    string `json:"arch"`     // runtime.GOARCH
}

// String implements the [fmt.Stringer] interface.
func (i Info) String() string {
	var sb strings.Builder
	sb.WriteString(i.Short() + " (" + i.Go + ", " + i.OS + "/" + i.Arch + ")\n")
	if i.Commit != "" && i.BuiltAt != "" {
		sb.WriteString("commit " + i.Commit + "\n")
		sb.WriteString("built at " + i.BuiltAt + "\n")
	}
	return sb.String()
}

// Short returns the command name followed by the version.
func (i Info) Short() string { return i.Name + " " + i.Version }

var (
	once sync.Once
	info Info
)

// CmdName returns the base name of the current binary.
func CmdName() string { return Version().Name }

// Version returns the version and build information of the current binary.
func Version() Info {
	once.Do(func() { info = loadInfo(exeName(), debug.ReadBuildInfo) })
	return info
}

func exeName() string {
	exe, err := os.Executable()
	if err != nil {
		return "siteserve"
	}
	return strings.TrimSuffix(filepath.Base(exe), ".exe")
}

func loadInfo(name string, read func() (*debug.BuildInfo, bool)) Info {
	i := Info{
		Name:    name,
		Version: "devel",
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}

	bi, ok := read()
	if !ok {
		return i
	}
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		i.Version = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			i.Commit = s.Value
		case "vcs.time":
			i.BuiltAt = s.Value
		}
	}
	return i
}
