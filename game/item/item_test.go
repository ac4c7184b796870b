package item

import (
	"testing"

	"github.com/kasuganosora/idlerpg/resource"
	"github.com/stretchr/testify/assert"
)

func TestStarting(t *testing.T) {
	it := Starting(testRes.Rules)
	assert.Equal(t, "Rusty Sword", it.Name)
	assert.Equal(t, resource.SlotWeapon, it.Type)
	assert.Equal(t, 5, it.Attack)
	assert.Equal(t, 2500, it.BaseAttackInterval)
	assert.Equal(t, 0, it.Price)
	assert.False(t, it.IsTwoHanded())
}

func TestIsTwoHanded(t *testing.T) {
	assert.True(t, (&Item{Type: resource.SlotWeapon, HandType: resource.TwoHanded}).IsTwoHanded())
	assert.False(t, (&Item{Type: resource.SlotOffhand, HandType: resource.TwoHanded}).IsTwoHanded())
}

func TestSellValue(t *testing.T) {
	rules := testRes.Rules
	assert.Equal(t, 6, SellValue(rules, &Item{Price: 12}, 0))
	assert.Equal(t, 9, SellValue(rules, &Item{Price: 12}, 0.6)) // floor(12*0.5*1.6)
	// zero price falls back to the default value
	assert.Equal(t, 5, SellValue(rules, &Item{Price: 0}, 0))
}

func TestNormalize_BackfillsFromSlot(t *testing.T) {
	it := &Item{Name: "Sword", Rarity: resource.Uncommon, Prefixes: []string{"Sharp"}}
	Normalize(it, resource.SlotWeapon)
	assert.Equal(t, resource.SlotWeapon, it.Type)
	assert.Equal(t, resource.OneHanded, it.HandType)
	assert.NotEmpty(t, it.ID)
	assert.NotNil(t, it.Suffixes)
	assert.Equal(t, "Sharp Sword", it.FullName)
}

func TestNormalize_KeepsExistingType(t *testing.T) {
	it := &Item{Name: "Ring", Type: resource.SlotRing, FullName: "Ring"}
	Normalize(it, resource.SlotWeapon)
	assert.Equal(t, resource.SlotRing, it.Type)
	assert.Equal(t, resource.Common, it.Rarity)
}
