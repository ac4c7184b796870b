package player

import (
	"github.com/kasuganosora/idlerpg/game/item"
	"github.com/kasuganosora/idlerpg/resource"
)

// EquipResult describes the side effects of an Equip call.
type EquipResult struct {
	Equipped *item.Item
	// Replaced is the item previously in the slot, now in inventory.
	Replaced *item.Item
	// DisplacedOffhand is set when a two-handed weapon pushed the offhand
	// back into inventory.
	DisplacedOffhand *item.Item
}

// Equip moves the inventory item id into its slot. Equipping an offhand
// while a two-handed weapon is held is rejected without any mutation.
func (c *Character) Equip(id string) (EquipResult, error) {
	idx := c.inventoryIndex(id)
	if idx < 0 {
		return EquipResult{}, ErrItemNotFound
	}
	it := c.Inventory[idx]
	slot := it.Type
	if !resource.ValidSlot(slot) {
		return EquipResult{}, ErrInvalidSlot
	}
	if slot == resource.SlotOffhand {
		if w := c.Weapon(); w != nil && w.IsTwoHanded() {
			return EquipResult{}, ErrOffhandWithTwoHanded
		}
	}

	res := EquipResult{Equipped: it}
	c.Inventory = append(c.Inventory[:idx], c.Inventory[idx+1:]...)

	if it.IsTwoHanded() {
		if off := c.Equipment[resource.SlotOffhand]; off != nil {
			delete(c.Equipment, resource.SlotOffhand)
			c.Inventory = append(c.Inventory, off)
			res.DisplacedOffhand = off
		}
	}
	if prev := c.Equipment[slot]; prev != nil {
		c.Inventory = append(c.Inventory, prev)
		res.Replaced = prev
	}
	c.Equipment[slot] = it
	c.dirty = true
	return res, nil
}

// Unequip moves the item in slot to the inventory.
func (c *Character) Unequip(slot resource.Slot) (*item.Item, error) {
	if !resource.ValidSlot(slot) {
		return nil, ErrInvalidSlot
	}
	it := c.Equipment[slot]
	if it == nil {
		return nil, ErrSlotEmpty
	}
	delete(c.Equipment, slot)
	c.Inventory = append(c.Inventory, it)
	c.dirty = true
	return it, nil
}
