package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/capability"
	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/providers/clipboard"
	"github.com/mecattaf/web-shell-sub003/internal/renderer"
	"github.com/mecattaf/web-shell-sub003/internal/supervisor"
	"github.com/mecattaf/web-shell-sub003/internal/window"
)

const notesManifest = `{
	"version": "1.0.0",
	"name": "notes",
	"entrypoint": "index.html",
	"permissions": {"clipboard": {"read": true, "write": true}}
}`

func newRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	log := logging.NewNop()
	bus := events.NewBus()
	caps := capability.NewRegistry(bus, log)
	windows := window.NewRegistry(log)
	focus := window.NewFocusCoordinator(windows, bus, log)
	sup := supervisor.New(supervisor.DefaultConfig(root), caps, windows, focus, renderer.NewHeadless(), bus, log)

	b := bridge.New(caps, log)
	require.NoError(t, b.Register(clipboard.NewProvider()))

	h := NewHandlers(sup, caps, windows, focus, b)
	r := gin.New()
	r.GET("/health", h.Health)
	r.GET("/apps", h.ListApps)
	r.GET("/apps/:id", h.GetApp)
	r.POST("/apps/scan", h.ScanApps)
	r.POST("/apps/:id/launch", h.LaunchApp)
	r.POST("/apps/:id/reload", h.ReloadApp)
	r.DELETE("/apps/:id", h.CloseApp)
	r.GET("/capabilities/:id", h.GetCapabilities)
	r.GET("/capabilities/:id/audit", h.GetAudit)
	r.GET("/windows", h.ListWindows)
	r.POST("/windows/:id/focus", h.FocusWindow)
	r.GET("/focus", h.FocusState)
	r.GET("/services", h.ListServices)
	r.POST("/services/call", h.CallService)
	return r, root
}

func writeBundle(t *testing.T, root, dir, body string, files ...string) {
	t.Helper()
	bundle := filepath.Join(root, dir)
	require.NoError(t, os.MkdirAll(bundle, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(bundle, "manifest.json"), []byte(body), 0o644))
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(bundle, f), []byte("<!doctype html>"), 0o644))
	}
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestAppLifecycleOverHTTP(t *testing.T) {
	r, root := newRouter(t)
	writeBundle(t, root, "notes", notesManifest, "index.html")

	w := do(r, http.MethodPost, "/apps/scan", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/apps/notes/launch", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	require.Contains(t, body, "instance")

	w = do(r, http.MethodGet, "/apps/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, "running", body["state"])
	assert.Contains(t, body, "instance")

	w = do(r, http.MethodDelete, "/apps/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/apps/notes", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLaunchUnknownAppReturns404(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/apps/ghost/launch", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLaunchMissingEntrypointReturns422(t *testing.T) {
	r, root := newRouter(t)
	writeBundle(t, root, "notes", notesManifest)

	do(r, http.MethodPost, "/apps/scan", nil)
	w := do(r, http.MethodPost, "/apps/notes/launch", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestReloadNotRunningReturns409(t *testing.T) {
	r, root := newRouter(t)
	writeBundle(t, root, "notes", notesManifest, "index.html")

	do(r, http.MethodPost, "/apps/scan", nil)
	w := do(r, http.MethodPost, "/apps/notes/reload", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCapabilitiesEndpoint(t *testing.T) {
	r, root := newRouter(t)
	writeBundle(t, root, "notes", notesManifest, "index.html")

	do(r, http.MethodPost, "/apps/scan", nil)
	do(r, http.MethodPost, "/apps/notes/launch", nil)

	w := do(r, http.MethodGet, "/capabilities/notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "notes", body["app_id"])

	w = do(r, http.MethodGet, "/capabilities/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAuditRejectsBadLimit(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodGet, "/capabilities/notes/audit?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/capabilities/notes/audit?limit=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFocusWindowOverHTTP(t *testing.T) {
	r, root := newRouter(t)
	writeBundle(t, root, "notes", notesManifest, "index.html")

	do(r, http.MethodPost, "/apps/scan", nil)
	w := do(r, http.MethodPost, "/apps/notes/launch", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/windows", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	windowsList, ok := body["windows"].([]any)
	require.True(t, ok)
	require.Len(t, windowsList, 1)
	containerID := windowsList[0].(map[string]any)["id"].(string)

	w = do(r, http.MethodPost, "/windows/"+containerID+"/focus", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/windows/nope/focus", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServiceCallOverHTTP(t *testing.T) {
	r, root := newRouter(t)
	writeBundle(t, root, "notes", notesManifest, "index.html")

	do(r, http.MethodPost, "/apps/scan", nil)
	do(r, http.MethodPost, "/apps/notes/launch", nil)

	w := do(r, http.MethodGet, "/services", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/services/call", CallRequest{
		AppID:  "notes",
		Tool:   "clipboard.write",
		Params: map[string]any{"data": "hello"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/services/call", CallRequest{
		AppID: "ghost",
		Tool:  "clipboard.write",
		Params: map[string]any{
			"data": "hello",
		},
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, decode(t, w), "denial")
}

func TestServiceCallRejectsBadBody(t *testing.T) {
	r, _ := newRouter(t)

	w := do(r, http.MethodPost, "/services/call", map[string]any{"tool": "clipboard.read"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
