package item

import (
	"testing"

	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRes = resource.MustLoadDefault()

func template(t *testing.T, it *Item) *resource.BaseItem {
	t.Helper()
	for _, b := range testRes.BaseItems[it.Type] {
		if b.Name == it.Name {
			return b
		}
	}
	t.Fatalf("no template %q in slot %s", it.Name, it.Type)
	return nil
}

// ---- AffixSplit ----

func TestAffixSplit(t *testing.T) {
	cases := []struct{ count, pre, suf int }{
		{0, 0, 0},
		{1, 1, 0},
		{2, 1, 1},
		{3, 2, 1},
		{5, 3, 2},
		{8, 3, 3},
	}
	for _, c := range cases {
		p, s := AffixSplit(c.count)
		assert.Equal(t, c.pre, p, "prefixes for %d", c.count)
		assert.Equal(t, c.suf, s, "suffixes for %d", c.count)
	}
}

// ---- RollRarity ----

func TestRollRarity_EmptyFallsBackToCommon(t *testing.T) {
	g := NewGenerator(testRes, random.Fixed(0.99), nil)
	assert.Equal(t, resource.Common, g.RollRarity(nil))
	assert.Equal(t, resource.Common, g.RollRarity([]resource.Rarity{"mythic"}))
}

func TestRollRarity_CumulativeWalk(t *testing.T) {
	allowed := []resource.Rarity{resource.Common, resource.Uncommon, resource.Rare}
	cases := []struct {
		roll float64
		want resource.Rarity
	}{
		{0.0, resource.Common},
		{0.49, resource.Common},
		{0.5, resource.Common}, // cumulative 50 >= 50
		{0.51, resource.Uncommon},
		{0.8, resource.Uncommon},
		{0.94, resource.Rare},
		{0.97, resource.Common}, // past 95 total weight
	}
	for _, c := range cases {
		g := NewGenerator(testRes, random.Fixed(c.roll), nil)
		assert.Equal(t, c.want, g.RollRarity(allowed), "roll %v", c.roll)
	}
}

func TestRollRarity_SingleAllowedBounds(t *testing.T) {
	g := NewGenerator(testRes, random.New(7), nil)
	for _, r := range []resource.Rarity{resource.Uncommon, resource.Epic, resource.Legendary} {
		for i := 0; i < 500; i++ {
			it := g.Generate([]resource.Rarity{r}, "")
			require.Equal(t, r, it.Rarity)
		}
	}
}

// ---- Generate ----

func TestGenerate_ForcedRarityOverridesRoll(t *testing.T) {
	g := NewGenerator(testRes, random.New(3), nil)
	for i := 0; i < 50; i++ {
		it := g.Generate([]resource.Rarity{resource.Common}, resource.Epic)
		assert.Equal(t, resource.Epic, it.Rarity)
	}
}

func TestGenerate_CommonHasNoAffixes(t *testing.T) {
	g := NewGenerator(testRes, random.New(11), nil)
	for i := 0; i < 100; i++ {
		it := g.Generate(nil, "")
		assert.Equal(t, resource.Common, it.Rarity)
		assert.Empty(t, it.Prefixes)
		assert.Empty(t, it.Suffixes)
		assert.Equal(t, it.Name, it.FullName)
		assert.Equal(t, template(t, &it).Stats, it.Stats)
	}
}

func TestGenerate_AffixEligibility(t *testing.T) {
	g := NewGenerator(testRes, random.New(99), nil)
	all := []resource.Rarity{resource.Common, resource.Uncommon, resource.Rare, resource.Epic, resource.Legendary}
	for i := 0; i < 2000; i++ {
		it := g.Generate(all, all[i%len(all)])
		for _, name := range it.Prefixes {
			a := testRes.Prefixes[name]
			require.NotNil(t, a)
			assert.True(t, a.Allows(it.Type), "prefix %s on %s", name, it.Type)
		}
		for _, name := range it.Suffixes {
			a := testRes.Suffixes[name]
			require.NotNil(t, a)
			assert.True(t, a.Allows(it.Type), "suffix %s on %s", name, it.Type)
		}
		pre, suf := AffixSplit(testRes.Rarity(it.Rarity).AffixCount)
		assert.LessOrEqual(t, len(it.Prefixes), pre)
		assert.LessOrEqual(t, len(it.Suffixes), suf)
	}
}

func TestGenerate_StatReconstruction(t *testing.T) {
	g := NewGenerator(testRes, random.New(5), nil)
	for i := 0; i < 1000; i++ {
		it := g.Generate(nil, resource.Legendary)
		base, affixes := Breakdown(testRes, &it)
		assert.Equal(t, template(t, &it).Stats, base, it.FullName)
		assert.Equal(t, it.Stats, base.Add(affixes))
	}
}

func TestGenerate_PriceAndFullName(t *testing.T) {
	// slot roll 0 -> weapon, template roll 0 -> Sword, then affix picks.
	g := NewGenerator(testRes, random.Fixed(0), nil)
	it := g.Generate(nil, resource.Rare)
	assert.Equal(t, resource.SlotWeapon, it.Type)
	assert.Equal(t, "Sword", it.Name)
	assert.Equal(t, 12, it.Price) // floor(5 * 2.5)
	require.Len(t, it.Prefixes, 1)
	require.Len(t, it.Suffixes, 1)
	assert.Equal(t, "Masterwork", it.Prefixes[0])
	assert.Equal(t, "of the Elite", it.Suffixes[0])
	assert.Equal(t, "Masterwork Sword of the Elite", it.FullName)
	assert.Equal(t, resource.OneHanded, it.HandType)
	assert.Equal(t, 2000, it.BaseAttackInterval)
	assert.NotEmpty(t, it.ID)
}

func TestDisplayName_JoinsAllAffixes(t *testing.T) {
	got := DisplayName("Ring", resource.Legendary,
		[]string{"Divine", "Eternal", "Radiant"}, []string{"of Eternity", "of the Cosmos"})
	assert.Equal(t, "Divine Eternal Radiant Ring of Eternity of the Cosmos", got)
	assert.Equal(t, "Ring", DisplayName("Ring", resource.Common, []string{"Divine"}, nil))
}
