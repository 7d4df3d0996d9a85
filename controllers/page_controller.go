package controllers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PageController serves the storefront's static pages.
type PageController struct {
	staticDir string
	logger    *zap.Logger
}

func NewPageController(staticDir string, logger *zap.Logger) *PageController {
	return &PageController{staticDir: staticDir, logger: logger}
}

func (pc *PageController) Index(c *gin.Context) {
	c.File(filepath.Join(pc.staticDir, "index.html"))
}

func (pc *PageController) Success(c *gin.Context) {
	c.File(filepath.Join(pc.staticDir, "sucesso.html"))
}

// NotFound serves existing files under the static dir and otherwise
// answers 404 with the index page.
func (pc *PageController) NotFound(c *gin.Context) {
	if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
		name := filepath.Join(pc.staticDir, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}
	}

	pc.logger.Warn("Route not found", zap.String("method", c.Request.Method), zap.String("path", c.Request.URL.Path))
	index, err := os.ReadFile(filepath.Join(pc.staticDir, "index.html"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", index)
}
