package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/idlerpg/game/ascension"
	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/session"
	"github.com/kasuganosora/idlerpg/game/world"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
)

// GameHandler exposes the player commands of the hosted game. Every call is
// funnelled through the runner so handlers never touch the game directly.
type GameHandler struct {
	runner  *session.Runner
	store   session.Store
	saveKey string
	logger  *zap.Logger
}

// NewGameHandler creates a GameHandler saving to store under saveKey.
func NewGameHandler(runner *session.Runner, store session.Store, saveKey string, logger *zap.Logger) *GameHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameHandler{runner: runner, store: store, saveKey: saveKey, logger: logger}
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, player.ErrItemNotFound),
		errors.Is(err, world.ErrUnknownZone),
		errors.Is(err, session.ErrNoSave):
		return http.StatusNotFound
	case errors.Is(err, player.ErrInvalidSlot),
		errors.Is(err, session.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, world.ErrZoneLocked),
		errors.Is(err, player.ErrSlotEmpty),
		errors.Is(err, player.ErrOffhandWithTwoHanded),
		errors.Is(err, session.ErrCombatActive),
		errors.Is(err, session.ErrDead),
		errors.Is(err, ascension.ErrStillAlive):
		return http.StatusConflict
	case errors.Is(err, session.ErrRunnerStopped):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (h *GameHandler) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("game command failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// do runs fn on the game goroutine and writes an error response on failure.
func (h *GameHandler) do(c *gin.Context, fn func(*session.Game) error) bool {
	if err := h.runner.Do(c.Request.Context(), fn); err != nil {
		h.fail(c, err)
		return false
	}
	return true
}

// Snapshot returns the presentation view of the game.
// GET /api/game?sort=rarity&slot=weapon
func (h *GameHandler) Snapshot(c *gin.Context) {
	key := player.SortKey(c.DefaultQuery("sort", string(player.SortNew)))
	slot := resource.Slot(c.Query("slot"))
	var v session.View
	if !h.do(c, func(g *session.Game) error {
		v = g.View(key, slot)
		return nil
	}) {
		return
	}
	c.JSON(http.StatusOK, v)
}

// Log returns the activity log, optionally filtered by category or limited
// to entries after a sequence number.
// GET /api/game/log?category=loot&since=42
func (h *GameHandler) Log(c *gin.Context) {
	cat := session.Category(c.Query("category"))
	since, err := strconv.ParseInt(c.DefaultQuery("since", "0"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid since"})
		return
	}
	var entries []session.LogEntry
	if !h.do(c, func(g *session.Game) error {
		for _, e := range g.Log(cat) {
			if e.Seq > since {
				entries = append(entries, e)
			}
		}
		return nil
	}) {
		return
	}
	if entries == nil {
		entries = []session.LogEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// ChangeZone moves to another zone.
// POST /api/game/zone {"zone": "forest"}
func (h *GameHandler) ChangeZone(c *gin.Context) {
	var req struct {
		Zone string `json:"zone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.do(c, func(g *session.Game) error { return g.ChangeZone(req.Zone) }) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "zone": req.Zone})
}

type itemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

// Equip equips an inventory item.
// POST /api/game/equip {"item_id": "..."}
func (h *GameHandler) Equip(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var st player.Stats
	if !h.do(c, func(g *session.Game) error {
		if err := g.Equip(req.ItemID); err != nil {
			return err
		}
		st = g.Stats()
		return nil
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": st})
}

// Unequip moves an equipped item back to the inventory.
// POST /api/game/unequip {"slot": "helmet"}
func (h *GameHandler) Unequip(c *gin.Context) {
	var req struct {
		Slot resource.Slot `json:"slot" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var st player.Stats
	if !h.do(c, func(g *session.Game) error {
		if err := g.Unequip(req.Slot); err != nil {
			return err
		}
		st = g.Stats()
		return nil
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": st})
}

// Sell sells one inventory item.
// POST /api/game/sell {"item_id": "..."}
func (h *GameHandler) Sell(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var gold, total int
	if !h.do(c, func(g *session.Game) error {
		var err error
		gold, err = g.Sell(req.ItemID)
		total = g.Character().Gold
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "gold_earned": gold, "gold": total})
}

// SellJunk sells every inventory item matching the auto-sell rules.
// POST /api/game/sell-junk
func (h *GameHandler) SellJunk(c *gin.Context) {
	var sold, gold int
	if !h.do(c, func(g *session.Game) error {
		sold, gold = g.SellJunk()
		return nil
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "sold": sold, "gold_earned": gold})
}

// SetAutoSell replaces the auto-sell rules.
// PUT /api/game/autosell {"enabled": true, "rarities": {"common": true}, "types": {}}
func (h *GameHandler) SetAutoSell(c *gin.Context) {
	var req player.AutoSell
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var sold, gold int
	if !h.do(c, func(g *session.Game) error {
		sold, gold = g.SetAutoSell(req)
		return nil
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "sold": sold, "gold_earned": gold})
}

// Save writes the game to the configured store.
// POST /api/game/save
func (h *GameHandler) Save(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.do(c, func(g *session.Game) error { return g.Save(ctx, h.store, h.saveKey) }) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Load replaces the game with the stored save.
// POST /api/game/load
func (h *GameHandler) Load(c *gin.Context) {
	ctx := c.Request.Context()
	if !h.do(c, func(g *session.Game) error { return g.Load(ctx, h.store, h.saveKey) }) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// EndRun gives up the current run.
// POST /api/game/end-run
func (h *GameHandler) EndRun(c *gin.Context) {
	ctx := c.Request.Context()
	var death *session.Death
	if !h.do(c, func(g *session.Game) error {
		g.EndRun(ctx)
		death = g.Death()
		return nil
	}) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "death": death})
}

// Ascend starts a new run after death.
// POST /api/game/ascend
func (h *GameHandler) Ascend(c *gin.Context) {
	ctx := c.Request.Context()
	var res ascension.Result
	if !h.do(c, func(g *session.Game) error {
		var err error
		res, err = g.Ascend(ctx)
		return err
	}) {
		return
	}
	c.JSON(http.StatusOK, res)
}
