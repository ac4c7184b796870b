package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/idlerpg/audit"
	"github.com/kasuganosora/idlerpg/game/session"
	"github.com/kasuganosora/idlerpg/scheduler"
	"go.uber.org/zap"
)

// AdminHandler handles admin-only REST endpoints.
// Routes should be protected by AdminAuth middleware.
type AdminHandler struct {
	runner *session.Runner
	audit  *audit.Service
	sched  *scheduler.Scheduler
	logger *zap.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	runner *session.Runner,
	auditSvc *audit.Service,
	sched *scheduler.Scheduler,
	logger *zap.Logger,
) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{runner: runner, audit: auditSvc, sched: sched, logger: logger}
}

func (h *AdminHandler) do(c *gin.Context, fn func(*session.Game) error) bool {
	if err := h.runner.Do(c.Request.Context(), fn); err != nil {
		status := errorStatus(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("admin command failed", zap.Error(err))
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return false
	}
	return true
}

// GiveGold credits gold to the character.
// POST /api/admin/gold {"amount": 1000}
func (h *AdminHandler) GiveGold(c *gin.Context) {
	var req struct {
		Amount int `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var gold int
	if !h.do(c, func(g *session.Game) error {
		if err := g.GiveGold(req.Amount); err != nil {
			return err
		}
		gold = g.Character().Gold
		return nil
	}) {
		return
	}
	h.logger.Info("admin gave gold", zap.Int("amount", req.Amount))
	c.JSON(http.StatusOK, gin.H{"ok": true, "gold": gold})
}

// GiveLevels applies level-ups and grants a legendary item.
// POST /api/admin/levels {"levels": 5}
func (h *AdminHandler) GiveLevels(c *gin.Context) {
	var req struct {
		Levels int `json:"levels" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	var level int
	if !h.do(c, func(g *session.Game) error {
		if err := g.GiveLevels(ctx, req.Levels); err != nil {
			return err
		}
		level = g.Character().Level
		return nil
	}) {
		return
	}
	h.logger.Info("admin gave levels", zap.Int("levels", req.Levels), zap.Int("level", level))
	c.JSON(http.StatusOK, gin.H{"ok": true, "level": level})
}

// SetGuaranteedDrops toggles the 100% drop override.
// POST /api/admin/guaranteed-drops {"enabled": true}
func (h *AdminHandler) SetGuaranteedDrops(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.do(c, func(g *session.Game) error {
		g.SetGuaranteedDrops(req.Enabled)
		return nil
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "enabled": req.Enabled})
}

// ListSchedulerTasks returns every scheduled task with its run count.
// GET /api/admin/scheduler
func (h *AdminHandler) ListSchedulerTasks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tasks": h.sched.Tasks()})
}

// Runs returns the most recent finished runs.
// GET /api/admin/runs?limit=20
func (h *AdminHandler) Runs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	runs, err := h.audit.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list runs failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// AdminAuth returns a middleware that checks the X-Admin-Key header.
// WARNING: if adminKey is empty all admin endpoints are disabled (503) so the
// server cannot be accidentally deployed without protection. Set a non-empty
// server.admin_key in config to enable admin routes.
func AdminAuth(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable,
				gin.H{"error": "admin endpoints disabled: set server.admin_key in config"})
			return
		}
		key := c.GetHeader("X-Admin-Key")
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
