package talent

import (
	"math"

	"github.com/kasuganosora/idlerpg/resource"
)

// Bonuses is the aggregate effect of all allocated talents. Percent fields
// are whole percentage points; Mult fields are multiplicative factors.
type Bonuses struct {
	AttackFlat  float64 `json:"attackFlat"`
	AttackPct   float64 `json:"attackPct"`
	AttackMult  float64 `json:"attackMult"`
	CritChance  float64 `json:"critChance"`
	CritDamage  float64 `json:"critDamage"`
	AttackSpeed float64 `json:"attackSpeed"`
	Dodge       float64 `json:"dodge"`
	Block       float64 `json:"block"`

	GoldPct          float64 `json:"goldPct"`
	GoldMult         float64 `json:"goldMult"`
	GoldStreakPct    float64 `json:"goldStreakPct"`
	StreakCapPct     float64 `json:"streakCapPct"`
	DropPct          float64 `json:"dropPct"`
	RarityUpgradePct float64 `json:"rarityUpgradePct"`
	SellPct          float64 `json:"sellPct"`
	DuplicatePct     float64 `json:"duplicatePct"`

	XPPct          float64 `json:"xpPct"`
	XPMult         float64 `json:"xpMult"`
	XPReductionPct float64 `json:"xpReductionPct"`
	XPBurst        float64 `json:"xpBurst"`
	StudyPct       float64 `json:"studyPct"`
	PassiveXP      float64 `json:"passiveXp"`

	StartLevel      int     `json:"startLevel"`
	CostDiscountPct float64 `json:"costDiscountPct"`
}

// NewBonuses returns the neutral bonus set.
func NewBonuses() Bonuses {
	return Bonuses{AttackMult: 1, GoldMult: 1, XPMult: 1}
}

func (b *Bonuses) apply(e resource.Effect, lvl int) {
	v := e.Flat + e.PerLevel*float64(lvl)
	switch e.Kind {
	case resource.EffectAttackFlat:
		b.AttackFlat += v
	case resource.EffectAttackPct:
		b.AttackPct += v
	case resource.EffectAttackMult:
		b.AttackMult *= v
	case resource.EffectCritChance:
		b.CritChance += v
	case resource.EffectCritDamage:
		b.CritDamage += v
	case resource.EffectAttackSpeed:
		b.AttackSpeed += v
	case resource.EffectDodge:
		b.Dodge += v
	case resource.EffectBlock:
		b.Block += v
	case resource.EffectGoldPct:
		b.GoldPct += v
	case resource.EffectGoldMult:
		b.GoldMult *= v
	case resource.EffectGoldStreak:
		b.GoldStreakPct += v
	case resource.EffectStreakCapPct:
		b.StreakCapPct += v
	case resource.EffectDropPct:
		b.DropPct += v
	case resource.EffectRarityUpgrade:
		b.RarityUpgradePct += v
	case resource.EffectSellPct:
		b.SellPct += v
	case resource.EffectDuplicateDrop:
		b.DuplicatePct += v
	case resource.EffectXPPct:
		b.XPPct += v
	case resource.EffectXPMult:
		b.XPMult *= v
	case resource.EffectXPReduction:
		b.XPReductionPct += v
	case resource.EffectXPBurst:
		b.XPBurst += v
	case resource.EffectStudyHabits:
		b.StudyPct += v
	case resource.EffectPassiveXP:
		b.PassiveXP += v
	case resource.EffectStartLevel:
		if int(v) > b.StartLevel {
			b.StartLevel = int(v)
		}
	case resource.EffectCostDiscount:
		b.CostDiscountPct += v
	}
}

// ExperienceMultiplier is (1 + additive XP%) x ultimate multiplier.
func (b Bonuses) ExperienceMultiplier() float64 {
	return (1 + b.XPPct/100) * b.XPMult
}

// GoldMultiplier includes the no-damage streak bonus.
func (b Bonuses) GoldMultiplier(streak int) float64 {
	return (1 + b.GoldPct/100 + float64(streak)*b.GoldStreakPct/100) * b.GoldMult
}

// DropMultiplier scales a zone's base drop chance.
func (b Bonuses) DropMultiplier() float64 {
	return 1 + b.DropPct/100
}

// SellBonus is the additive sell-value bonus as a fraction.
func (b Bonuses) SellBonus() float64 {
	return b.SellPct / 100
}

// XPReduction is the fractional level threshold reduction, capped at max.
func (b Bonuses) XPReduction(max float64) float64 {
	return math.Min(max, b.XPReductionPct/100)
}

// StreakCap is the longest streak that still adds gold.
func (b Bonuses) StreakCap(base int) int {
	return int(float64(base) * (1 + b.StreakCapPct/100))
}

// BurstMultiplier returns the XP multiplier for the kill with the given
// running count, or 1 when no burst applies.
func (b Bonuses) BurstMultiplier(kills, every int) float64 {
	if b.XPBurst <= 0 || every <= 0 || kills <= 0 || kills%every != 0 {
		return 1
	}
	return b.XPBurst
}
