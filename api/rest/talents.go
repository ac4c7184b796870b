package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/idlerpg/game/session"
)

// Talents lists every talent node with its level and next cost.
// GET /api/talents
func (h *GameHandler) Talents(c *gin.Context) {
	var (
		nodes []session.TalentView
		gold  int
	)
	if !h.do(c, func(g *session.Game) error {
		nodes = g.Talents()
		gold = g.Character().Gold
		return nil
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"talents": nodes, "gold": gold})
}

// Allocate buys one rank of a talent. An unaffordable or locked node is
// reported with ok=false rather than an error.
// POST /api/talents/allocate {"pathway": "power", "node": "power_1"}
func (h *GameHandler) Allocate(c *gin.Context) {
	var req struct {
		Pathway string `json:"pathway" binding:"required"`
		Node    string `json:"node" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	var (
		ok    bool
		level int
		gold  int
	)
	if !h.do(c, func(g *session.Game) error {
		var err error
		ok, err = g.Allocate(ctx, req.Pathway, req.Node)
		level = g.Tree().Level(req.Pathway, req.Node)
		gold = g.Character().Gold
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": ok, "level": level, "gold": gold})
}
