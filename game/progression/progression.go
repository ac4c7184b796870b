// Package progression turns experience into levels and keeps the zone
// unlock set in step with the character level.
package progression

import (
	"math"

	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/talent"
	"github.com/kasuganosora/idlerpg/game/world"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
)

// LevelUp describes one level gained.
type LevelUp struct {
	Level       int              `json:"level"`
	NextLevelXP int              `json:"nextLevelXp"`
	MaxHP       int              `json:"maxHp"`
	Healed      int              `json:"healed"`
	Unlocked    []*resource.Zone `json:"-"`
}

// Controller applies experience and level-ups to a character.
type Controller struct {
	res    *resource.ResourceLoader
	zones  *world.Zones
	logger *zap.Logger
}

// New creates a Controller updating zones on every level-up.
func New(res *resource.ResourceLoader, zones *world.Zones, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{res: res, zones: zones, logger: logger}
}

// GainXP scales amount by the experience multiplier, credits it and
// processes every level-up it causes. It returns the credited amount.
func (p *Controller) GainXP(c *player.Character, b talent.Bonuses, amount int) (int, []LevelUp) {
	if amount <= 0 {
		return 0, p.Cascade(c, b)
	}
	gained := int(math.Floor(float64(amount) * b.ExperienceMultiplier()))
	return gained, p.AddXP(c, b, gained)
}

// AddXP credits an already scaled amount, such as a victory reward.
func (p *Controller) AddXP(c *player.Character, b talent.Bonuses, amount int) []LevelUp {
	if amount > 0 {
		c.XP += amount
	}
	return p.Cascade(c, b)
}

// Cascade levels up while the accumulated XP covers the current threshold.
func (p *Controller) Cascade(c *player.Character, b talent.Bonuses) []LevelUp {
	var ups []LevelUp
	for c.NextLevelXP > 0 && c.XP >= c.NextLevelXP {
		ups = append(ups, p.LevelUp(c, b))
	}
	return ups
}

// LevelUp consumes one threshold of XP and applies the per-level gains:
// a larger threshold, base attack, max HP through level scaling and a
// partial heal. Newly reachable zones are unlocked.
func (p *Controller) LevelUp(c *player.Character, b talent.Bonuses) LevelUp {
	rules := p.res.Rules
	c.XP -= c.NextLevelXP
	if c.XP < 0 {
		c.XP = 0
	}
	c.Level++
	c.NextLevelXP = NextThreshold(c.NextLevelXP, rules.LevelUp.ThresholdGrowth, b.XPReduction(rules.LevelUp.MaxXPReduction))
	c.BaseAttack += rules.LevelUp.Attack
	c.MarkDirty()

	st := c.Stats(b, rules)
	before := c.HP
	c.Heal(int(math.Floor(float64(st.MaxHP)*rules.LevelUp.HealPct)), st.MaxHP)

	up := LevelUp{
		Level:       c.Level,
		NextLevelXP: c.NextLevelXP,
		MaxHP:       st.MaxHP,
		Healed:      c.HP - before,
	}
	if p.zones != nil {
		up.Unlocked = p.zones.CheckUnlocks(c.Level)
	}
	p.logger.Info("level up",
		zap.Int("level", c.Level),
		zap.Int("next_xp", c.NextLevelXP),
		zap.Int("unlocked", len(up.Unlocked)))
	return up
}

// NextThreshold is floor(prev × growth × (1 − reduction)), never below 1.
func NextThreshold(prev int, growth, reduction float64) int {
	n := int(math.Floor(float64(prev) * growth * (1 - reduction)))
	if n < 1 {
		n = 1
	}
	return n
}

// StartingThreshold returns the XP threshold of a fresh character at level,
// growing the level 1 threshold once per level above 1.
func StartingThreshold(rules *resource.Rules, level int) int {
	t := rules.XPThreshold
	for l := 1; l < level; l++ {
		t = NextThreshold(t, rules.LevelUp.ThresholdGrowth, 0)
	}
	return t
}
