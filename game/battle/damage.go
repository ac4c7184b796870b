package battle

import (
	"math"

	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/random"
)

// DamageResult holds the outcome of one attack. Hooks registered for the
// damage hook points receive a pointer and may adjust Damage.
type DamageResult struct {
	Attacker string `json:"attacker"`
	Defender string `json:"defender"`
	Damage   int    `json:"damage"`
	Critical bool   `json:"critical"`
	Dodged   bool   `json:"dodged"`
	Blocked  bool   `json:"blocked"`
}

// PlayerStrike resolves a player attack. A crit is rolled only when the
// crit chance is positive; a roll at or below it multiplies damage by
// 1 + critDamage/100.
func PlayerStrike(st player.Stats, rng random.Source) DamageResult {
	dmg := st.Attack
	var r DamageResult
	if st.CritChance > 0 && random.Percent(rng) <= st.CritChance {
		r.Critical = true
		dmg *= 1 + st.CritDamage/100
	}
	r.Damage = floorDamage(dmg)
	return r
}

// EnemyStrike resolves an enemy attack against the player. Dodge is rolled
// first and negates the attack; otherwise a block scales the damage by
// blockReduction.
func EnemyStrike(attack int, st player.Stats, blockReduction float64, rng random.Source) DamageResult {
	var r DamageResult
	if st.Dodge > 0 && random.Percent(rng) <= st.Dodge {
		r.Dodged = true
		return r
	}
	dmg := float64(attack)
	if st.BlockChance > 0 && random.Percent(rng) <= st.BlockChance {
		r.Blocked = true
		dmg *= blockReduction
	}
	r.Damage = floorDamage(dmg)
	return r
}

// LifeStealHeal returns the HP restored by dealing damage.
func LifeStealHeal(damage int, lifeSteal float64) int {
	if damage <= 0 || lifeSteal <= 0 {
		return 0
	}
	return int(math.Floor(float64(damage) * lifeSteal / 100))
}

func floorDamage(v float64) int {
	if v <= 0 {
		return 0
	}
	return int(math.Floor(v))
}
