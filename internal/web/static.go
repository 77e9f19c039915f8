// Package web serves the browser front-end.
package web

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed public
var embedded embed.FS

var errNotDir = errors.New("not a directory")

// Assets returns the directory dir when set, otherwise the embedded front-end.
func Assets(dir string) (fs.FS, error) {
	if dir == "" {
		return fs.Sub(embedded, "public")
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("public dir: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("public dir %s: %w", dir, errNotDir)
	}

	return os.DirFS(dir), nil
}

// Static serves files from assets for GET and HEAD requests that name an
// existing file. Everything else, including unknown paths that may be short
// codes, falls through to next.
func Static(assets fs.FS) func(http.Handler) http.Handler {
	files := http.FileServer(http.FS(assets))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)

				return
			}

			if !exists(assets, r.URL.Path) {
				next.ServeHTTP(w, r)

				return
			}

			files.ServeHTTP(w, r)
		})
	}
}

// exists reports whether urlPath names a file, or a directory with an index page.
func exists(assets fs.FS, urlPath string) bool {
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		name = "."
	}

	info, err := fs.Stat(assets, name)
	if err != nil {
		return false
	}

	if !info.IsDir() {
		return true
	}

	_, err = fs.Stat(assets, path.Join(name, "index.html"))

	return err == nil
}
