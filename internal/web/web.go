// Package web holds the static pages served by the sign-in server.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed public
var content embed.FS

const (
	IndexPage   = "index.html"
	WelcomePage = "welcome.html"
)

// Public is the embedded public/ directory.
var Public = mustSub(content, "public")

func mustSub(f fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// Page returns a handler that serves the named HTML page.
func Page(name string) gin.HandlerFunc {
	body, err := fs.ReadFile(Public, name)
	if err != nil {
		panic(err)
	}
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "text/html; charset=utf-8", body)
	}
}

// RegisterAssets serves the non-page files of public/ at the root.
func RegisterAssets(r gin.IRoutes) {
	r.StaticFileFS("/styles.css", "styles.css", http.FS(Public))
	r.StaticFileFS("/welcome.js", "welcome.js", http.FS(Public))
}
