package controllers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPageRouter(t *testing.T) *gin.Engine {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>index</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sucesso.html"), []byte("<h1>ok</h1>"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "js"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "app.js"), []byte("console.log(1)"), 0o644))

	gin.SetMode(gin.TestMode)
	pc := NewPageController(dir, zap.NewNop())
	router := gin.New()
	router.GET("/", pc.Index)
	router.GET("/sucesso", pc.Success)
	router.GET("/sucesso.html", pc.Success)
	router.NoRoute(pc.NotFound)
	return router
}

func TestPages(t *testing.T) {
	router := newPageRouter(t)

	get := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	w := get("/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "index")

	for _, target := range []string{"/sucesso", "/sucesso.html"} {
		w = get(target)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ok")
	}

	w = get("/js/app.js")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "console.log(1)", w.Body.String())

	w = get("/does/not/exist")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "index")

	w = get("/../../etc/passwd")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
