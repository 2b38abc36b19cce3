package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPagesAndAssets(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", Page(IndexPage))
	r.GET("/welcome", Page(WelcomePage))
	RegisterAssets(r)

	for path, want := range map[string]string{
		"/":           "/login",
		"/welcome":    "/welcome.js",
		"/welcome.js": "/api/user",
		"/styles.css": ".card",
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), want, path)
	}
}

func TestPagePanicsOnUnknownFile(t *testing.T) {
	assert.Panics(t, func() { Page("missing.html") })
}
