package item

import (
	"math"

	"github.com/google/uuid"
	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
)

const maxAffixesPerSide = 3

// Generator rolls concrete items from the catalog.
type Generator struct {
	res    *resource.ResourceLoader
	rng    random.Source
	logger *zap.Logger
}

// NewGenerator creates a Generator. A nil rng uses a clock-seeded source.
func NewGenerator(res *resource.ResourceLoader, rng random.Source, logger *zap.Logger) *Generator {
	if rng == nil {
		rng = random.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{res: res, rng: rng, logger: logger}
}

// Generate creates an item whose rarity is drawn from allowed, or is forced
// when forced is non-empty.
func (g *Generator) Generate(allowed []resource.Rarity, forced resource.Rarity) Item {
	rarity := forced
	if rarity == "" || g.res.Rarity(rarity) == nil {
		rarity = g.RollRarity(allowed)
	}
	tier := g.res.Rarity(rarity)

	slots := g.res.Slots()
	if len(slots) == 0 {
		return Item{ID: uuid.NewString(), Rarity: rarity, Prefixes: []string{}, Suffixes: []string{}}
	}
	slot := slots[random.Intn(g.rng, len(slots))]
	templates := g.res.BaseItems[slot]
	base := templates[random.Intn(g.rng, len(templates))]

	value := base.BaseValue
	if value <= 0 {
		value = g.res.Rules.DefaultItemValue
	}
	it := Item{
		ID:                 uuid.NewString(),
		Name:               base.Name,
		Type:               slot,
		Rarity:             rarity,
		Stats:              base.Stats,
		HandType:           base.HandType,
		BaseAttackInterval: base.BaseAttackInterval,
		Price:              int(float64(value) * tier.PriceMultiplier),
		Prefixes:           []string{},
		Suffixes:           []string{},
	}
	if slot == resource.SlotWeapon && it.HandType == "" {
		it.HandType = resource.OneHanded
	}

	maxPrefixes, maxSuffixes := AffixSplit(tier.AffixCount)
	for _, a := range g.pick(tier.Prefixes, g.res.Prefixes, slot, maxPrefixes) {
		it.Stats = it.Stats.Add(a.Stats)
		it.Prefixes = append(it.Prefixes, a.Name)
	}
	for _, a := range g.pick(tier.Suffixes, g.res.Suffixes, slot, maxSuffixes) {
		it.Stats = it.Stats.Add(a.Stats)
		it.Suffixes = append(it.Suffixes, a.Name)
	}
	it.FullName = DisplayName(it.Name, it.Rarity, it.Prefixes, it.Suffixes)

	g.logger.Debug("item generated",
		zap.String("name", it.FullName),
		zap.String("rarity", string(it.Rarity)),
		zap.String("slot", string(it.Type)))
	return it
}

// RollRarity draws a tier from allowed by cumulative weight in catalog order.
// Unknown names are ignored and an empty set means common only. A roll past
// the total allowed weight lands on the lowest allowed tier.
func (g *Generator) RollRarity(allowed []resource.Rarity) resource.Rarity {
	set := make(map[resource.Rarity]bool, len(allowed))
	for _, r := range allowed {
		if g.res.Rarity(r) != nil {
			set[r] = true
		}
	}
	if len(set) == 0 {
		set[resource.Common] = true
	}

	roll := random.Percent(g.rng)
	var lowest resource.Rarity
	cumulative := 0.0
	for _, tier := range g.res.Rarities {
		if !set[tier.Name] {
			continue
		}
		if lowest == "" {
			lowest = tier.Name
		}
		cumulative += tier.Chance
		if cumulative >= roll {
			return tier.Name
		}
	}
	return lowest
}

// pick draws up to n distinct affixes from names that allow slot.
func (g *Generator) pick(names []string, table map[string]*resource.Affix, slot resource.Slot, n int) []*resource.Affix {
	pool := make([]*resource.Affix, 0, len(names))
	for _, name := range names {
		if a := table[name]; a != nil && a.Allows(slot) {
			pool = append(pool, a)
		}
	}
	var out []*resource.Affix
	for len(out) < n && len(pool) > 0 {
		i := random.Intn(g.rng, len(pool))
		out = append(out, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return out
}

// AffixSplit divides a tier's affix budget between prefixes and suffixes.
func AffixSplit(affixCount int) (prefixes, suffixes int) {
	prefixes = int(math.Ceil(float64(affixCount) / 2))
	if prefixes > maxAffixesPerSide {
		prefixes = maxAffixesPerSide
	}
	suffixes = affixCount - prefixes
	if suffixes > maxAffixesPerSide {
		suffixes = maxAffixesPerSide
	}
	if suffixes < 0 {
		suffixes = 0
	}
	return prefixes, suffixes
}
