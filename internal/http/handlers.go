package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mecattaf/web-shell-sub003/internal/bridge"
	"github.com/mecattaf/web-shell-sub003/internal/capability"
	"github.com/mecattaf/web-shell-sub003/internal/supervisor"
	"github.com/mecattaf/web-shell-sub003/internal/window"
)

// Handlers contains all control API handlers.
type Handlers struct {
	supervisor *supervisor.Supervisor
	caps       *capability.Registry
	windows    *window.Registry
	focus      *window.FocusCoordinator
	bridge     *bridge.Bridge
}

// NewHandlers creates a handler set.
func NewHandlers(
	sup *supervisor.Supervisor,
	caps *capability.Registry,
	windows *window.Registry,
	focus *window.FocusCoordinator,
	b *bridge.Bridge,
) *Handlers {
	return &Handlers{
		supervisor: sup,
		caps:       caps,
		windows:    windows,
		focus:      focus,
		bridge:     b,
	}
}

// Root handles the liveness check.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "web-shell",
	})
}

// Health handles the detailed health check.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"supervisor": h.supervisor.Stats(),
		"focus":      h.focus.State(),
	})
}

// ListApps lists the catalog and all running instances.
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"loaded":  h.supervisor.LoadedApps(),
		"running": h.supervisor.RunningApps(),
		"stats":   h.supervisor.Stats(),
	})
}

// GetApp returns one catalog entry with its lifecycle state.
func (h *Handlers) GetApp(c *gin.Context) {
	appID := c.Param("id")

	entry, ok := h.supervisor.GetApp(appID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown app: " + appID})
		return
	}

	state, _ := h.supervisor.State(appID)
	resp := gin.H{
		"app":   entry,
		"state": state,
	}
	if reason, failed := h.supervisor.FailureReason(appID); failed {
		resp["failure_reason"] = reason
	}
	if inst, running := h.supervisor.Instance(appID); running {
		resp["instance"] = inst
	}
	c.JSON(http.StatusOK, resp)
}

// ScanApps re-runs discovery over the apps root.
func (h *Handlers) ScanApps(c *gin.Context) {
	report, err := h.supervisor.Discover(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// LaunchApp launches an app by id.
func (h *Handlers) LaunchApp(c *gin.Context) {
	appID := c.Param("id")

	inst, err := h.supervisor.Launch(c.Request.Context(), appID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, supervisor.ErrUnknownApp) {
			status = http.StatusNotFound
		}
		var lf *supervisor.LaunchFailure
		if errors.As(err, &lf) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instance": inst})
}

// CloseApp closes a running app.
func (h *Handlers) CloseApp(c *gin.Context) {
	appID := c.Param("id")

	if err := h.supervisor.Close(c.Request.Context(), appID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, supervisor.ErrNotRunning) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": true, "app_id": appID})
}

// ReloadApp re-validates and relaunches a running app.
func (h *Handlers) ReloadApp(c *gin.Context) {
	appID := c.Param("id")

	inst, err := h.supervisor.Reload(c.Request.Context(), appID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, supervisor.ErrNotRunning) {
			status = http.StatusConflict
		}
		var rf *supervisor.ReloadFailure
		if errors.As(err, &rf) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"instance": inst})
}

// GetCapabilities returns an app's granted capability set.
func (h *Handlers) GetCapabilities(c *gin.Context) {
	appID := c.Param("id")

	set, ok := h.caps.Get(appID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no grants for app: " + appID})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"app_id":      appID,
		"permissions": set,
		"granted":     set.Granted(),
	})
}

// GetAudit returns recent capability check outcomes for an app.
func (h *Handlers) GetAudit(c *gin.Context) {
	appID := c.Param("id")

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, gin.H{
		"app_id":  appID,
		"entries": h.caps.Audit(appID, limit),
	})
}

// ListWindows returns all containers in stacking order.
func (h *Handlers) ListWindows(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"windows": h.windows.List(),
		"focus":   h.focus.State(),
	})
}

// FocusWindow raises a container and transfers focus to it.
func (h *Handlers) FocusWindow(c *gin.Context) {
	containerID := c.Param("id")

	if !h.windows.Contains(containerID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown container: " + containerID})
		return
	}
	h.windows.BringToFront(containerID)
	h.focus.RequestFocus(containerID)
	c.JSON(http.StatusOK, gin.H{"focus": h.focus.State()})
}

// FocusState reports the current focus holder and history.
func (h *Handlers) FocusState(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"focus": h.focus.State()})
}

// FocusNext cycles focus forward through the widget layer.
func (h *Handlers) FocusNext(c *gin.Context) {
	h.focus.FocusNextWidget()
	c.JSON(http.StatusOK, gin.H{"focus": h.focus.State()})
}

// FocusPrev cycles focus backward through the widget layer.
func (h *Handlers) FocusPrev(c *gin.Context) {
	h.focus.FocusPreviousWidget()
	c.JSON(http.StatusOK, gin.H{"focus": h.focus.State()})
}

// ListServices lists registered provider definitions.
func (h *Handlers) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": h.bridge.Services()})
}

// CallRequest is the body of a privileged service call.
type CallRequest struct {
	AppID  string         `json:"app_id" binding:"required"`
	Tool   string         `json:"tool" binding:"required"`
	Params map[string]any `json:"params"`
}

// CallService dispatches a privileged call through the bridge.
func (h *Handlers) CallService(c *gin.Context) {
	var req CallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.bridge.Call(c.Request.Context(), req.AppID, req.Tool, req.Params)
	if err != nil {
		var denial *capability.PermissionDenied
		if errors.As(err, &denial) {
			c.JSON(http.StatusForbidden, gin.H{"result": res, "denial": denial})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"result": res, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": res})
}
