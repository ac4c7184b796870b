package battle

import (
	"math"

	"github.com/kasuganosora/idlerpg/game/item"
	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/game/talent"
	"github.com/kasuganosora/idlerpg/game/world"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
)

// Reward is what a defeated enemy yields.
type Reward struct {
	Gold  int         `json:"gold"`
	XP    int         `json:"xp"`
	Burst float64     `json:"burst,omitempty"`
	Drops []item.Item `json:"drops,omitempty"`
	// Upgraded is set when the treasure talent raised the drop's rarity.
	Upgraded bool `json:"upgraded,omitempty"`
}

// Rewarder rolls gold, experience and item drops for victories.
type Rewarder struct {
	res    *resource.ResourceLoader
	gen    *item.Generator
	rng    random.Source
	logger *zap.Logger

	// GuaranteedDrops forces the natural drop roll to succeed in every zone
	// that can drop items.
	GuaranteedDrops bool
}

// NewRewarder creates a Rewarder drawing items from gen.
func NewRewarder(res *resource.ResourceLoader, gen *item.Generator, rng random.Source, logger *zap.Logger) *Rewarder {
	if rng == nil {
		rng = random.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rewarder{res: res, gen: gen, rng: rng, logger: logger}
}

// GoldReward is floor(floor(base × variance) × multiplier).
func GoldReward(base int, variance, multiplier float64) int {
	g := math.Floor(float64(base) * variance)
	return int(math.Floor(g * multiplier))
}

// XPReward is floor(base × experience multiplier × burst multiplier).
func XPReward(base int, multiplier, burst float64) int {
	return int(math.Floor(float64(base) * multiplier * burst))
}

// Roll computes the rewards of a victory. kills is the zone kill counter
// after this kill and streak the current no-damage kill streak.
func (r *Rewarder) Roll(e *world.Enemy, zone *resource.Zone, b talent.Bonuses, kills, streak int) Reward {
	rules := r.res.Rules
	variance := random.Between(r.rng, rules.GoldRollMin, 1.0)
	rw := Reward{
		Gold: GoldReward(e.Gold, variance, b.GoldMultiplier(streak)),
	}
	burst := 1.0
	if !e.IsBoss {
		burst = b.BurstMultiplier(kills, rules.BurstEvery)
	}
	if burst > 1 {
		rw.Burst = burst
	}
	rw.XP = XPReward(e.XP, b.ExperienceMultiplier(), burst)
	rw.Drops, rw.Upgraded = r.rollDrops(e, zone, b)
	return rw
}

func (r *Rewarder) rollDrops(e *world.Enemy, zone *resource.Zone, b talent.Bonuses) ([]item.Item, bool) {
	if e.IsBoss && e.GuaranteedDrop != "" {
		return []item.Item{r.gen.Generate(nil, e.GuaranteedDrop)}, false
	}
	if zone == nil || zone.DropChance <= 0 {
		return nil, false
	}
	chance := zone.DropChance * b.DropMultiplier()
	if r.GuaranteedDrops {
		chance = 100
	}
	if random.Percent(r.rng) >= chance {
		return nil, false
	}

	rarity := r.gen.RollRarity(zone.AllowedRarities)
	upgraded := false
	if b.RarityUpgradePct > 0 && random.Percent(r.rng) < b.RarityUpgradePct {
		if next, ok := r.nextAllowed(rarity, zone.AllowedRarities); ok {
			rarity, upgraded = next, true
		}
	}
	drops := []item.Item{r.gen.Generate(zone.AllowedRarities, rarity)}
	if b.DuplicatePct > 0 && random.Percent(r.rng) < b.DuplicatePct {
		drops = append(drops, r.gen.Generate(zone.AllowedRarities, rarity))
	}
	r.logger.Debug("item dropped",
		zap.String("zone", zone.ID),
		zap.String("rarity", string(rarity)),
		zap.Int("count", len(drops)))
	return drops, upgraded
}

// nextAllowed returns the tier directly above cur when the zone allows it.
func (r *Rewarder) nextAllowed(cur resource.Rarity, allowed []resource.Rarity) (resource.Rarity, bool) {
	rank := r.res.RarityRank(cur)
	if rank < 0 || rank+1 >= len(r.res.Rarities) {
		return cur, false
	}
	next := r.res.Rarities[rank+1].Name
	for _, a := range allowed {
		if a == next {
			return next, true
		}
	}
	return cur, false
}
