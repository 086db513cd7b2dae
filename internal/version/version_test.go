// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package version

import (
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/siteserve/siteserve/internal/testutil"
)

func TestLoadInfo(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		bi   *debug.BuildInfo
		ok   bool
		want Info
	}{
		"no build info": {
			ok: false,
			want: Info{
				Name:    "siteserve",
				Version: "devel",
			},
		},
		"devel build with VCS stamps": {
			bi: &debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123abcd"},
					{Key: "vcs.time", Value: "2024-05-01T10:00:00Z"},
				},
			},
			ok: true,
			want: Info{
				Name:    "siteserve",
				Version: "devel",
				Commit:  "0123abcd",
				BuiltAt: "2024-05-01T10:00:00Z",
			},
		},
		"tagged release": {
			bi: &debug.BuildInfo{
				Main: debug.Module{Version: "v1.2.0"},
			},
			ok: true,
			want: Info{
				Name:    "siteserve",
				Version: "v1.2.0",
			},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got := loadInfo("siteserve", func() (*debug.BuildInfo, bool) { return tc.bi, tc.ok })
			tc.want.Go = runtime.Version()
			tc.want.OS = runtime.GOOS
			tc.want.Arch = runtime.GOARCH
			testutil.AssertEqual(t, got, tc.want)
		})
	}
}

func TestInfoString(t *testing.T) {
	t.Parallel()

	i := Info{
		Name:    "siteserve",
		Version: "v1.2.0",
		Commit:  "0123abcd",
		BuiltAt: "2024-05-01T10:00:00Z",
		Go:      "go1.24.2",
		OS:      "linux",
		Arch:    "amd64",
	}
	want := "siteserve v1.2.0 (go1.24.2, linux/amd64)\n" +
		"commit 0123abcd\n" +
		"built at 2024-05-01T10:00:00Z\n"
	testutil.AssertEqual(t, i.String(), want)

	i.Commit = ""
	testutil.AssertEqual(t, i.String(), "siteserve v1.2.0 (go1.24.2, linux/amd64)\n")
}
