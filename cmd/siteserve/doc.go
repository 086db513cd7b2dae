// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Siteserve serves the directory it is installed in over HTTP, allowing
cross-origin access to every file.

Put the binary next to the site files and run it:

	$ siteserve [flags...]

Every response, including errors and redirects, carries these headers:

	Access-Control-Allow-Origin: *
	Access-Control-Allow-Methods: GET, POST, OPTIONS
	Access-Control-Allow-Headers: Content-Type

Only GET and HEAD requests are served; other methods get 501 Not Implemented.

Settings can also be read from a TOML file passed with -config:

	addr = ":8080"
	debug = false
	access_log = true
	sandbox = true

Flags and environment variables take precedence over the file.

With -debug, pages describing the running server are available at /debug/.
They are not protected, so don't enable it on a public network.

Press Ctrl+C to stop the server.
*/
package main

import (
	_ "embed"

	"github.com/siteserve/siteserve/internal/cli"
)

//go:embed doc.go
var doc []byte

func init() { cli.SetDocComment(doc) }
