// Package item holds concrete item instances and the affix roller that
// creates them from the static catalog.
package item

import (
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/kasuganosora/idlerpg/resource"
)

// Item is a concrete piece of equipment. Its embedded Stats always equal the
// template stats plus the deltas of every affix named in Prefixes and
// Suffixes.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	FullName string          `json:"fullName"`
	Type     resource.Slot   `json:"type"`
	Rarity   resource.Rarity `json:"rarity"`
	resource.Stats
	HandType           resource.HandType `json:"handType,omitempty"`
	BaseAttackInterval int               `json:"baseAttackInterval,omitempty"`
	Price              int               `json:"price"`
	Prefixes           []string          `json:"prefixes"`
	Suffixes           []string          `json:"suffixes"`
}

// Clone returns a deep copy of it.
func (it *Item) Clone() *Item {
	c := *it
	c.Prefixes = slices.Clone(it.Prefixes)
	c.Suffixes = slices.Clone(it.Suffixes)
	return &c
}

// IsTwoHanded reports whether the item is a two-handed weapon.
func (it *Item) IsTwoHanded() bool {
	return it.Type == resource.SlotWeapon && it.HandType == resource.TwoHanded
}

// DisplayName builds the full name from the base name and affixes. Common
// items never show affixes.
func DisplayName(base string, rarity resource.Rarity, prefixes, suffixes []string) string {
	if rarity == resource.Common {
		return base
	}
	parts := make([]string, 0, len(prefixes)+len(suffixes)+1)
	parts = append(parts, prefixes...)
	parts = append(parts, base)
	parts = append(parts, suffixes...)
	return strings.Join(parts, " ")
}

// Starting builds the weapon every run begins with.
func Starting(rules *resource.Rules) Item {
	w := rules.StartingWeapon
	return Item{
		ID:                 uuid.NewString(),
		Name:               w.Name,
		FullName:           w.Name,
		Type:               w.Slot,
		Rarity:             w.Rarity,
		Stats:              w.Stats,
		HandType:           w.HandType,
		BaseAttackInterval: w.BaseAttackInterval,
		Price:              w.Price,
		Prefixes:           []string{},
		Suffixes:           []string{},
	}
}

// Breakdown splits an item's stored stats into the template part and the
// affix part by subtracting every known affix contribution. Unknown affix
// names contribute nothing.
func Breakdown(res *resource.ResourceLoader, it *Item) (base, affixes resource.Stats) {
	for _, name := range it.Prefixes {
		if a := res.Prefixes[name]; a != nil {
			affixes = affixes.Add(a.Stats)
		}
	}
	for _, name := range it.Suffixes {
		if a := res.Suffixes[name]; a != nil {
			affixes = affixes.Add(a.Stats)
		}
	}
	return it.Stats.Sub(affixes), affixes
}

// SellValue is the gold credited for selling it. bonus is the additive sell
// multiplier from talents (0.2 = +20%).
func SellValue(rules *resource.Rules, it *Item, bonus float64) int {
	price := it.Price
	if price <= 0 {
		price = rules.DefaultItemValue
	}
	return int(float64(price) * rules.SellRatio * (1 + bonus))
}

// Normalize back-fills fields that older saves may lack. slot is the
// equipment slot the item was found in, or "" for inventory entries.
func Normalize(it *Item, slot resource.Slot) {
	if it.Type == "" && slot != "" {
		it.Type = slot
	}
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Rarity == "" {
		it.Rarity = resource.Common
	}
	if it.Prefixes == nil {
		it.Prefixes = []string{}
	}
	if it.Suffixes == nil {
		it.Suffixes = []string{}
	}
	if it.Type == resource.SlotWeapon && it.HandType == "" {
		it.HandType = resource.OneHanded
	}
	if it.FullName == "" {
		it.FullName = DisplayName(it.Name, it.Rarity, it.Prefixes, it.Suffixes)
	}
}
