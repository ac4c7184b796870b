package player

import (
	"maps"
	"sort"
	"strings"

	"github.com/kasuganosora/idlerpg/game/item"
	"github.com/kasuganosora/idlerpg/resource"
)

// AutoSell selects items that are sold the moment they would enter the
// inventory. An item matches when either its rarity or its slot is enabled.
type AutoSell struct {
	Enabled  bool                     `json:"enabled"`
	Rarities map[resource.Rarity]bool `json:"rarities"`
	Types    map[resource.Slot]bool   `json:"types"`
}

// Matches reports whether it should be auto-sold.
func (a AutoSell) Matches(it *item.Item) bool {
	if !a.Enabled {
		return false
	}
	return a.Rarities[it.Rarity] || a.Types[it.Type]
}

// Clone returns a copy that shares no maps with a.
func (a AutoSell) Clone() AutoSell {
	a.Rarities = maps.Clone(a.Rarities)
	a.Types = maps.Clone(a.Types)
	return a
}

// MatchesJunk is Matches without the Enabled switch; SellJunk uses the same
// filters even while automatic selling is off.
func (a AutoSell) MatchesJunk(it *item.Item) bool {
	return a.Rarities[it.Rarity] || a.Types[it.Type]
}

// AddItem appends it to the inventory.
func (c *Character) AddItem(it *item.Item) {
	c.Inventory = append(c.Inventory, it)
}

// FindItem returns the inventory item with id, or nil.
func (c *Character) FindItem(id string) *item.Item {
	if i := c.inventoryIndex(id); i >= 0 {
		return c.Inventory[i]
	}
	return nil
}

func (c *Character) inventoryIndex(id string) int {
	for i, it := range c.Inventory {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Sell removes the inventory item id and credits its sell value.
func (c *Character) Sell(id string, rules *resource.Rules, bonus float64) (*item.Item, int, error) {
	idx := c.inventoryIndex(id)
	if idx < 0 {
		return nil, 0, ErrItemNotFound
	}
	it := c.Inventory[idx]
	c.Inventory = append(c.Inventory[:idx], c.Inventory[idx+1:]...)
	gold := item.SellValue(rules, it, bonus)
	c.AddGold(gold)
	return it, gold, nil
}

// SellJunk sells every inventory item matched by the auto-sell filters.
func (c *Character) SellJunk(rules *resource.Rules, filter AutoSell, bonus float64) (sold int, gold int) {
	kept := make([]*item.Item, 0, len(c.Inventory))
	for _, it := range c.Inventory {
		if filter.MatchesJunk(it) {
			g := item.SellValue(rules, it, bonus)
			c.AddGold(g)
			gold += g
			sold++
			continue
		}
		kept = append(kept, it)
	}
	c.Inventory = kept
	return sold, gold
}

// SortKey orders inventory views.
type SortKey string

const (
	SortNew    SortKey = "new"
	SortName   SortKey = "name"
	SortRarity SortKey = "rarity"
	SortType   SortKey = "type"
	SortAttack SortKey = "attack"
)

// InventoryView returns a sorted copy of the inventory, optionally filtered
// to one slot. The underlying order is untouched.
func (c *Character) InventoryView(res *resource.ResourceLoader, key SortKey, only resource.Slot) []*item.Item {
	view := make([]*item.Item, 0, len(c.Inventory))
	for i := len(c.Inventory) - 1; i >= 0; i-- {
		it := c.Inventory[i]
		if only != "" && it.Type != only {
			continue
		}
		view = append(view, it)
	}
	slotRank := make(map[resource.Slot]int, len(resource.AllSlots))
	for i, s := range resource.AllSlots {
		slotRank[s] = i
	}
	switch key {
	case SortName:
		sort.SliceStable(view, func(i, j int) bool {
			return strings.ToLower(view[i].FullName) < strings.ToLower(view[j].FullName)
		})
	case SortRarity:
		sort.SliceStable(view, func(i, j int) bool {
			return res.RarityRank(view[i].Rarity) > res.RarityRank(view[j].Rarity)
		})
	case SortType:
		sort.SliceStable(view, func(i, j int) bool {
			return slotRank[view[i].Type] < slotRank[view[j].Type]
		})
	case SortAttack:
		sort.SliceStable(view, func(i, j int) bool {
			return view[i].Attack > view[j].Attack
		})
	}
	return view
}
