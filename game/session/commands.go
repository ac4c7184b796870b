package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/kasuganosora/idlerpg/audit"
	"github.com/kasuganosora/idlerpg/game/ascension"
	"github.com/kasuganosora/idlerpg/game/battle"
	"github.com/kasuganosora/idlerpg/game/item"
	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/progression"
	"github.com/kasuganosora/idlerpg/game/talent"
	"github.com/kasuganosora/idlerpg/game/world"
	"github.com/kasuganosora/idlerpg/plugin/hook"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
)

// ErrInvalidAmount is returned by admin commands given a non-positive amount.
var ErrInvalidAmount = errors.New("session: amount must be positive")

// ---- Accessors ----

func (g *Game) Resources() *resource.ResourceLoader { return g.res }
func (g *Game) Character() *player.Character        { return g.char }
func (g *Game) Tree() *talent.Tree                  { return g.tree }
func (g *Game) Zones() *world.Zones                 { return g.zones }
func (g *Game) Encounter() *battle.Encounter        { return g.encounter }
func (g *Game) Ascensions() int                     { return g.asc.Count() }
func (g *Game) Streak() int                         { return g.streak }
func (g *Game) RunKills() int                       { return g.runKills }
func (g *Game) AutoSell() player.AutoSell           { return g.autoSell.Clone() }
func (g *Game) GuaranteedDrops() bool               { return g.rewarder.GuaranteedDrops }
func (g *Game) EndRunLabel() string                 { return g.endRunLabel }

// Death describes the finished run, or nil while the character is alive.
func (g *Game) Death() *Death {
	if g.death == nil {
		return nil
	}
	d := *g.death
	return &d
}

// IsDead reports whether the run is over and waiting for an ascension.
func (g *Game) IsDead() bool { return g.char.IsDead() }

// Stats returns the effective stats under the current talents.
func (g *Game) Stats() player.Stats {
	return g.char.Stats(g.tree.Bonuses(), g.rules)
}

// Log returns the activity log oldest first, optionally filtered.
func (g *Game) Log(category Category) []LogEntry { return g.journal.Entries(category) }

// LogSince returns entries newer than seq.
func (g *Game) LogSince(seq int64) []LogEntry { return g.journal.Since(seq) }

// ClearLog empties the activity log.
func (g *Game) ClearLog() { g.journal.Clear() }

// ---- Zones ----

// ChangeZone moves to zone id. The encounter is cleared at once and, in a
// combat zone, the next spawn follows after the respawn delay.
func (g *Game) ChangeZone(id string) error {
	if err := g.zones.Move(id); err != nil {
		if errors.Is(err, world.ErrZoneLocked) {
			z := g.res.Zone(id)
			g.log(CategorySystem, "zone-locked", fmt.Sprintf("%s is locked! Reach level %d to unlock it.", z.Name, z.UnlockLevel))
		}
		return err
	}
	z := g.zones.Current()
	g.encounter.Clear()
	g.streak = 0
	if world.IsCombatZone(z) && !g.char.IsDead() {
		g.encounter.BeginRespawn(g.respawn)
	}
	if z.Rest {
		g.log(CategorySystem, "zone-change", fmt.Sprintf("%s - %s", z.Name, z.Description))
	} else {
		g.log(CategorySystem, "zone-change", fmt.Sprintf("Entered %s. %s", z.Name, z.Description))
	}
	g.logger.Debug("zone changed", zap.String("zone", z.ID))
	g.dirty.Enemy = true
	g.dirty.Character = true
	return nil
}

// ---- Equipment & inventory ----

// Equip moves the inventory item id into its slot.
func (g *Game) Equip(id string) error {
	r, err := g.char.Equip(id)
	if err != nil {
		if errors.Is(err, player.ErrOffhandWithTwoHanded) {
			g.log(CategorySystem, "equip-blocked", "Cannot equip offhand item while wielding a 2-handed weapon!")
		}
		return err
	}
	if r.DisplacedOffhand != nil {
		g.log(CategorySystem, "unequip", fmt.Sprintf("Unequipped %s to wield 2-handed weapon", r.DisplacedOffhand.FullName))
	}
	g.log(CategorySystem, "equip", fmt.Sprintf("Equipped %s!", r.Equipped.FullName))
	g.Stats()
	g.dirty.Character = true
	g.dirty.Inventory = true
	return nil
}

// Unequip moves the item in slot back to the inventory.
func (g *Game) Unequip(slot resource.Slot) error {
	it, err := g.char.Unequip(slot)
	if err != nil {
		return err
	}
	g.log(CategorySystem, "unequip", fmt.Sprintf("Unequipped %s", it.FullName))
	g.Stats()
	g.dirty.Character = true
	g.dirty.Inventory = true
	return nil
}

// Sell sells the inventory item id and returns the gold credited.
func (g *Game) Sell(id string) (int, error) {
	it, gold, err := g.char.Sell(id, g.rules, g.tree.Bonuses().SellBonus())
	if err != nil {
		return 0, err
	}
	g.log(CategoryShop, "sell", fmt.Sprintf("Sold %s for %d gold", it.FullName, gold))
	g.dirty.Character = true
	g.dirty.Inventory = true
	return gold, nil
}

// SellJunk sells every inventory item matching the auto-sell filters.
func (g *Game) SellJunk() (sold, gold int) {
	sold, gold = g.char.SellJunk(g.rules, g.autoSell, g.tree.Bonuses().SellBonus())
	if sold > 0 {
		g.log(CategoryShop, "sell", fmt.Sprintf("Sold %d item(s) for %d gold", sold, gold))
		g.dirty.Character = true
		g.dirty.Inventory = true
	}
	return sold, gold
}

// SetAutoSell replaces the auto-sell rules. Enabling them sells matching
// inventory items immediately.
func (g *Game) SetAutoSell(a player.AutoSell) (sold, gold int) {
	if a.Rarities == nil {
		a.Rarities = map[resource.Rarity]bool{}
	}
	if a.Types == nil {
		a.Types = map[resource.Slot]bool{}
	}
	g.autoSell = a
	if !a.Enabled {
		return 0, 0
	}
	return g.SellJunk()
}

// ---- Talents & ascension ----

// Allocate buys one rank of pathway/node. Talents can only be bought
// between runs; an unaffordable or locked node returns false.
func (g *Game) Allocate(ctx context.Context, pathway, node string) (bool, error) {
	if !g.char.IsDead() {
		return false, ErrCombatActive
	}
	if !g.tree.Allocate(pathway, node, g.char) {
		return false, nil
	}
	lvl := g.tree.Level(pathway, node)
	name := node
	if n := g.res.TalentNode(pathway, node); n != nil {
		name = n.Name
	}
	g.char.MarkDirty()
	g.log(CategorySystem, "talent", fmt.Sprintf("Allocated %s (Level %d)", name, lvl))
	g.trigger(ctx, hook.OnTalentAllocated, map[string]any{
		"pathway": pathway,
		"node":    node,
		"level":   lvl,
	})
	g.dirty.Character = true
	return true, nil
}

// Ascend starts a new run from a dead character. Gold and talents carry
// over; the finished run is handed to the recorder.
func (g *Game) Ascend(ctx context.Context) (ascension.Result, error) {
	if !g.char.IsDead() {
		return ascension.Result{}, ascension.ErrStillAlive
	}
	entry := audit.RunEntry{
		TraceID:      audit.TraceIDFrom(ctx),
		Ascension:    g.asc.Count() + 1,
		LevelReached: g.char.Level,
		Gold:         g.char.Gold,
		Kills:        g.runKills,
		TalentPoints: g.tree.TotalPoints(),
		Zone:         g.zones.CurrentID(),
		Talents:      g.tree.Snapshot(),
	}
	if g.death != nil {
		entry.KilledBy = g.death.Enemy
		entry.Zone = g.death.Zone
	}

	res := g.asc.Ascend(g.char, g.tree, g.zones)
	entry.StartLevel = res.StartLevel
	if g.recorder != nil {
		g.recorder.RecordRun(entry)
	}

	g.encounter.Clear()
	g.passive.Reset()
	g.streak = 0
	g.runKills = 0
	g.death = nil
	if world.IsCombatZone(g.zones.Current()) {
		g.encounter.BeginRespawn(g.respawn)
	}
	g.trigger(ctx, hook.OnAscend, res)
	g.log(CategorySystem, "ascension", fmt.Sprintf("Ascension %d complete! Your journey begins anew with %d talent points.", res.Ascensions, res.TalentPoints))
	g.dirty.all()
	return res, nil
}

// EndRun gives up the current run. The death message is the label shown
// on the end-run action.
func (g *Game) EndRun(ctx context.Context) {
	if g.char.IsDead() {
		return
	}
	g.char.HP = 0
	g.onDefeat(ctx, "", g.endRunLabel)
}

// ---- Admin ----

// GiveGold credits n gold.
func (g *Game) GiveGold(n int) error {
	if n <= 0 {
		return ErrInvalidAmount
	}
	g.char.AddGold(n)
	g.log(CategorySystem, "admin", fmt.Sprintf("Admin: Gave %d gold", n))
	g.dirty.Character = true
	return nil
}

// GiveLevels applies n level-ups, zeroes XP and grants a legendary item.
// A finished run stays finished: a dead character gets ErrDead.
func (g *Game) GiveLevels(ctx context.Context, n int) error {
	if n <= 0 {
		return ErrInvalidAmount
	}
	if g.char.IsDead() {
		return ErrDead
	}
	b := g.tree.Bonuses()
	ups := make([]progression.LevelUp, 0, n)
	for range n {
		ups = append(ups, g.prog.LevelUp(g.char, b))
	}
	g.char.XP = 0
	g.levelUps(ctx, ups)

	it := g.gen.Generate([]resource.Rarity{resource.Legendary}, resource.Legendary)
	g.char.AddItem(&it)
	g.log(CategorySystem, "admin", fmt.Sprintf("Admin: Gave %d level(s)", n))
	g.dirty.Inventory = true
	return nil
}

// SetGuaranteedDrops toggles the 100% drop chance override.
func (g *Game) SetGuaranteedDrops(on bool) {
	g.rewarder.GuaranteedDrops = on
	state := "disabled"
	if on {
		state = "enabled"
	}
	g.log(CategorySystem, "admin", "Admin: Guaranteed drops "+state)
}

// GenerateItem rolls an item from the given rarity pool into the inventory.
func (g *Game) GenerateItem(allowed []resource.Rarity) *item.Item {
	it := g.gen.Generate(allowed, "")
	g.char.AddItem(&it)
	g.dirty.Inventory = true
	return &it
}
