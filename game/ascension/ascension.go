// Package ascension implements the death-triggered run reset that keeps
// gold and talent allocations.
package ascension

import (
	"errors"

	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/progression"
	"github.com/kasuganosora/idlerpg/game/talent"
	"github.com/kasuganosora/idlerpg/game/world"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
)

// ErrStillAlive is returned when an ascension is requested mid-run.
var ErrStillAlive = errors.New("ascension: character is still alive")

// Result summarizes a completed ascension.
type Result struct {
	Ascensions   int `json:"ascensions"`
	LevelReached int `json:"levelReached"`
	StartLevel   int `json:"startLevel"`
	Gold         int `json:"gold"`
	TalentPoints int `json:"talentPoints"`
}

// Engine owns the ascension counter.
type Engine struct {
	res    *resource.ResourceLoader
	logger *zap.Logger
	count  int
}

// New creates an Engine with a zero counter.
func New(res *resource.ResourceLoader, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{res: res, logger: logger}
}

// Count returns the number of completed ascensions.
func (e *Engine) Count() int { return e.count }

// Restore sets the counter from a save. Negative values become zero.
func (e *Engine) Restore(n int) {
	if n < 0 {
		n = 0
	}
	e.count = n
}

// Ascend resets the run in place. Level, XP, HP, inventory, equipment and
// unlocked zones go back to their talent-augmented starting values; gold and
// the talent tree are untouched. The counter increments and stats are
// recomputed before returning.
func (e *Engine) Ascend(c *player.Character, tree *talent.Tree, zones *world.Zones) Result {
	rules := e.res.Rules
	b := tree.Bonuses()
	reached := c.Level

	start := b.StartLevel
	if start < 1 {
		start = 1
	}
	fresh := player.NewCharacter(rules)
	fresh.Gold = c.Gold
	fresh.Level = start
	fresh.NextLevelXP = progression.StartingThreshold(rules, start)
	*c = *fresh

	zones.Reset()
	zones.CheckUnlocks(start)

	c.MarkDirty()
	st := c.Stats(b, rules)
	c.HP = st.MaxHP

	e.count++
	res := Result{
		Ascensions:   e.count,
		LevelReached: reached,
		StartLevel:   start,
		Gold:         c.Gold,
		TalentPoints: tree.TotalPoints(),
	}
	e.logger.Info("ascended",
		zap.Int("ascensions", res.Ascensions),
		zap.Int("level_reached", reached),
		zap.Int("start_level", start),
		zap.Int("gold", c.Gold))
	return res
}
