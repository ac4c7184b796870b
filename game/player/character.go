// Package player holds the character state of a run: level, gold, XP,
// equipment, inventory and the derived combat stats.
package player

import (
	"encoding/json"
	"errors"

	"github.com/kasuganosora/idlerpg/game/item"
	"github.com/kasuganosora/idlerpg/resource"
)

var (
	ErrItemNotFound         = errors.New("player: item not in inventory")
	ErrSlotEmpty            = errors.New("player: slot is empty")
	ErrInvalidSlot          = errors.New("player: invalid equipment slot")
	ErrOffhandWithTwoHanded = errors.New("player: cannot equip an offhand with a two-handed weapon")
)

// Character is the mutable player state. Every item is owned either by
// Inventory or by exactly one Equipment slot.
type Character struct {
	Level       int                          `json:"level"`
	HP          int                          `json:"hp"`
	BaseHP      int                          `json:"baseHp"`
	BaseAttack  int                          `json:"baseAttack"`
	Gold        int                          `json:"gold"`
	XP          int                          `json:"xp"`
	NextLevelXP int                          `json:"nextLevelXp"`
	Equipment   map[resource.Slot]*item.Item `json:"equipment"`
	Inventory   []*item.Item                 `json:"inventory"`

	stats     Stats
	dirty     bool
	hpMissing bool
}

// UnmarshalJSON decodes a saved character and remembers whether the hp
// field was present, so an old save is not mistaken for a dead run.
func (c *Character) UnmarshalJSON(data []byte) error {
	type plain Character
	aux := struct {
		*plain
		HP *int `json:"hp"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.hpMissing = aux.HP == nil
	if aux.HP != nil {
		c.HP = *aux.HP
	}
	return nil
}

// NewCharacter creates a level 1 character holding the starting weapon.
func NewCharacter(rules *resource.Rules) *Character {
	c := &Character{
		Level:       1,
		HP:          rules.BaseHP,
		BaseHP:      rules.BaseHP,
		BaseAttack:  rules.BaseAttack,
		XP:          0,
		NextLevelXP: rules.XPThreshold,
		Inventory:   []*item.Item{},
		dirty:       true,
	}
	c.ResetEquipment(rules)
	return c
}

// ResetEquipment empties every slot and equips a fresh starting weapon.
func (c *Character) ResetEquipment(rules *resource.Rules) {
	c.Equipment = make(map[resource.Slot]*item.Item, len(resource.AllSlots))
	w := item.Starting(rules)
	c.Equipment[w.Type] = &w
	c.dirty = true
}

// CurrentGold implements talent.Wallet.
func (c *Character) CurrentGold() int { return c.Gold }

// AddGold credits amount; negative amounts are ignored.
func (c *Character) AddGold(amount int) {
	if amount > 0 {
		c.Gold += amount
	}
}

// SpendGold deducts amount if affordable.
func (c *Character) SpendGold(amount int) bool {
	if amount < 0 || amount > c.Gold {
		return false
	}
	c.Gold -= amount
	return true
}

// MarkDirty invalidates the cached stats.
func (c *Character) MarkDirty() { c.dirty = true }

// Dirty reports whether cached stats need a recompute.
func (c *Character) Dirty() bool { return c.dirty }

// IsDead reports whether HP has reached zero.
func (c *Character) IsDead() bool { return c.HP <= 0 }

// Heal restores amount HP up to max.
func (c *Character) Heal(amount, max int) {
	c.HP += amount
	if c.HP > max {
		c.HP = max
	}
}

// TakeDamage subtracts amount and clamps HP at zero.
func (c *Character) TakeDamage(amount int) {
	if amount <= 0 {
		return
	}
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
}

// Weapon returns the equipped weapon, or nil.
func (c *Character) Weapon() *item.Item {
	return c.Equipment[resource.SlotWeapon]
}

// FillHP sets HP to max when the decoded save had no hp field.
func (c *Character) FillHP(max int) {
	if c.hpMissing {
		c.HP = max
		c.hpMissing = false
	}
}

// Normalize back-fills missing fields after decoding a save. A missing hp
// is filled by FillHP once the effective max HP is known.
func (c *Character) Normalize(rules *resource.Rules) {
	if c.Level < 1 {
		c.Level = 1
	}
	if c.BaseHP <= 0 {
		c.BaseHP = rules.BaseHP
	}
	if c.BaseAttack <= 0 {
		c.BaseAttack = rules.BaseAttack
	}
	if c.NextLevelXP <= 0 {
		c.NextLevelXP = rules.XPThreshold
	}
	if c.Equipment == nil {
		c.Equipment = make(map[resource.Slot]*item.Item)
	}
	for slot, it := range c.Equipment {
		if it == nil || !resource.ValidSlot(slot) {
			delete(c.Equipment, slot)
			continue
		}
		item.Normalize(it, slot)
	}
	kept := c.Inventory[:0]
	for _, it := range c.Inventory {
		if it == nil {
			continue
		}
		item.Normalize(it, "")
		kept = append(kept, it)
	}
	c.Inventory = kept
	if c.Inventory == nil {
		c.Inventory = []*item.Item{}
	}
	c.dirty = true
}
