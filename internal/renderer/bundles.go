package renderer

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// BundleServer serves app bundle files over the control API so an
// embedded renderer can load them. Paths are confined to each app's
// registered bundle directory; traversal attempts return 404.
type BundleServer struct {
	mu      sync.RWMutex
	bundles map[string]string // appID -> bundle dir
}

// NewBundleServer creates an empty bundle server.
func NewBundleServer() *BundleServer {
	return &BundleServer{bundles: make(map[string]string)}
}

// Register associates an app id with its bundle directory.
func (b *BundleServer) Register(appID, dir string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.bundles[appID] = dir
}

// Unregister removes an app's bundle mapping.
func (b *BundleServer) Unregister(appID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.bundles, appID)
}

// Handler serves GET /bundles/:id/*filepath.
func (b *BundleServer) Handler(c *gin.Context) {
	appID := c.Param("id")
	rel := strings.TrimPrefix(c.Param("filepath"), "/")

	b.mu.RLock()
	dir, ok := b.bundles[appID]
	b.mu.RUnlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown app bundle"})
		return
	}

	clean := filepath.Clean(filepath.FromSlash(rel))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	full := filepath.Join(dir, clean)
	data, err := os.ReadFile(full)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.Data(http.StatusOK, detectContentType(full, data), data)
}

// detectContentType prefers the file extension for text assets, where
// content sniffing is unreliable, and falls back to sniffing bytes.
func detectContentType(path string, data []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js", ".mjs":
		return "text/javascript; charset=utf-8"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	}
	return mimetype.Detect(data).String()
}
