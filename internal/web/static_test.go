package web_test

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/SanketN15/url-shortner/internal/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fallthroughHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))

	return rec
}

func TestStatic(t *testing.T) {
	assets := fstest.MapFS{
		"index.html":      {Data: []byte("<form action=\"/shorten\"></form>")},
		"style.css":       {Data: []byte("body {}")},
		"docs/index.html": {Data: []byte("docs")},
		"empty/.keep":     {Data: []byte("")},
	}
	handler := web.Static(assets)(fallthroughHandler())

	t.Run("serves index at root", func(t *testing.T) {
		rec := serve(handler, http.MethodGet, "/")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "/shorten")
	})

	t.Run("serves existing file", func(t *testing.T) {
		rec := serve(handler, http.MethodGet, "/style.css")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "body {}", rec.Body.String())
	})

	t.Run("serves directory with index", func(t *testing.T) {
		rec := serve(handler, http.MethodGet, "/docs/")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "docs", rec.Body.String())
	})

	t.Run("falls through for unknown path", func(t *testing.T) {
		assert.Equal(t, http.StatusTeapot, serve(handler, http.MethodGet, "/abc123").Code)
	})

	t.Run("falls through for directory without index", func(t *testing.T) {
		assert.Equal(t, http.StatusTeapot, serve(handler, http.MethodGet, "/empty").Code)
	})

	t.Run("falls through for non-GET methods", func(t *testing.T) {
		assert.Equal(t, http.StatusTeapot, serve(handler, http.MethodPost, "/style.css").Code)
	})
}

func TestAssets(t *testing.T) {
	t.Run("embedded front-end has an index page posting to shorten", func(t *testing.T) {
		assets, err := web.Assets("")
		require.NoError(t, err)

		rec := serve(web.Static(assets)(fallthroughHandler()), http.MethodGet, "/")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `action="/shorten"`)
	})

	t.Run("uses directory when given", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.txt"), []byte("hi"), 0o600))

		assets, err := web.Assets(dir)
		require.NoError(t, err)

		rec := serve(web.Static(assets)(fallthroughHandler()), http.MethodGet, "/hello.txt")
		assert.Equal(t, "hi", rec.Body.String())
	})

	t.Run("rejects missing directory", func(t *testing.T) {
		_, err := web.Assets(filepath.Join(t.TempDir(), "missing"))

		assert.Error(t, err)
	})
}
