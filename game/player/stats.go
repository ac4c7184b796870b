package player

import (
	"math"

	"github.com/kasuganosora/idlerpg/game/talent"
	"github.com/kasuganosora/idlerpg/resource"
)

// Stats are the effective combat stats of a character.
type Stats struct {
	Attack         float64 `json:"attack"`
	MaxHP          int     `json:"maxHp"`
	AttackSpeed    float64 `json:"attackSpeed"`
	CritChance     float64 `json:"critChance"`
	CritDamage     float64 `json:"critDamage"`
	Dodge          float64 `json:"dodge"`
	BlockChance    float64 `json:"blockChance"`
	LifeSteal      float64 `json:"lifeSteal"`
	AttackInterval int     `json:"attackInterval"`

	EquipmentAttack int `json:"equipmentAttack"`
	EquipmentMaxHP  int `json:"equipmentMaxHp"`
}

// EquipmentTotals sums the stats of every equipped item.
func EquipmentTotals(c *Character) resource.Stats {
	var total resource.Stats
	for _, slot := range resource.AllSlots {
		if it := c.Equipment[slot]; it != nil {
			total = total.Add(it.Stats)
		}
	}
	return total
}

// ComputeStats derives the effective stats from base values, level,
// equipment and talent bonuses. It does not touch c.
func ComputeStats(c *Character, b talent.Bonuses, rules *resource.Rules) Stats {
	eq := EquipmentTotals(c)

	attack := (float64(c.BaseAttack) + b.AttackFlat) * (1 + b.AttackPct/100) * b.AttackMult
	s := Stats{
		Attack:          attack + float64(eq.Attack),
		MaxHP:           c.BaseHP + (c.Level-1)*rules.LevelUp.HP + eq.MaxHP,
		AttackSpeed:     float64(eq.AttackSpeed) + b.AttackSpeed,
		CritChance:      float64(eq.CritChance) + b.CritChance,
		CritDamage:      float64(eq.CritDamage) + b.CritDamage,
		Dodge:           float64(eq.Dodge) + b.Dodge,
		BlockChance:     float64(eq.BlockChance) + b.Block,
		LifeSteal:       float64(eq.LifeSteal),
		EquipmentAttack: eq.Attack,
		EquipmentMaxHP:  eq.MaxHP,
	}
	if s.MaxHP < 1 {
		s.MaxHP = 1
	}
	base := rules.DefaultAttackInterval
	if w := c.Weapon(); w != nil && w.BaseAttackInterval > 0 {
		base = w.BaseAttackInterval
	}
	s.AttackInterval = AttackInterval(base, s.AttackSpeed, rules.MinAttackInterval)
	return s
}

// AttackInterval converts a base interval and an attack speed percentage to
// the effective interval in milliseconds, never below min.
func AttackInterval(base int, speed float64, min int) int {
	div := 1 + speed/100
	if div < 0.1 {
		div = 0.1
	}
	ms := int(math.Floor(float64(base) / div))
	if ms < min {
		ms = min
	}
	return ms
}

// Stats returns the cached effective stats, recomputing them first when a
// mutation invalidated the cache. HP is clamped to the new maximum.
func (c *Character) Stats(b talent.Bonuses, rules *resource.Rules) Stats {
	if c.dirty {
		c.stats = ComputeStats(c, b, rules)
		c.dirty = false
		if c.HP > c.stats.MaxHP {
			c.HP = c.stats.MaxHP
		}
	}
	return c.stats
}

// CachedStats returns the last computed stats without recomputing.
func (c *Character) CachedStats() Stats { return c.stats }
