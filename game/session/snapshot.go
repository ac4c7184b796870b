package session

import (
	"github.com/kasuganosora/idlerpg/game/battle"
	"github.com/kasuganosora/idlerpg/game/item"
	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/resource"
)

// View is the plain-data presentation of a game.
type View struct {
	Character  CharacterView   `json:"character"`
	Inventory  []*item.Item    `json:"inventory"`
	Enemy      *EnemyView      `json:"enemy,omitempty"`
	Encounter  string          `json:"encounter"`
	Respawn    float64         `json:"respawnProgress"`
	Zone       string          `json:"currentZone"`
	Zones      []ZoneView      `json:"zones"`
	Death      *Death          `json:"death,omitempty"`
	EndRun     string          `json:"endRunLabel"`
	Ascensions int             `json:"ascensionCount"`
	Streak     int             `json:"goldStreak"`
	RunKills   int             `json:"runKills"`
	AutoSell   player.AutoSell `json:"autoSell"`
	Guaranteed bool            `json:"guaranteedDrops"`
	Dirty      Dirty           `json:"dirty"`
}

// CharacterView is the character panel.
type CharacterView struct {
	Level       int                          `json:"level"`
	HP          int                          `json:"hp"`
	Gold        int                          `json:"gold"`
	XP          int                          `json:"xp"`
	NextLevelXP int                          `json:"nextLevelXp"`
	Stats       player.Stats                 `json:"stats"`
	Equipment   map[resource.Slot]*item.Item `json:"equipment"`
	AttackBar   float64                      `json:"attackProgress"`
}

// EnemyView is the enemy panel.
type EnemyView struct {
	battle.EnemySnapshot
	AttackBar float64 `json:"attackProgress"`
}

// ZoneView is one entry of the zone selector.
type ZoneView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	UnlockLevel int    `json:"unlockLevel"`
	Unlocked    bool   `json:"unlocked"`
	Rest        bool   `json:"rest"`
	Kills       int    `json:"kills"`
	BossKills   int    `json:"bossRequiredKills,omitempty"`
}

// View builds the presentation snapshot. The inventory is sorted by key and
// optionally filtered to one slot. Dirty flags are reported, not cleared.
// The result shares no memory with the game, so it can be encoded after
// Runner.Do returns.
func (g *Game) View(key player.SortKey, only resource.Slot) View {
	st := g.Stats()
	v := View{
		Character: CharacterView{
			Level:       g.char.Level,
			HP:          g.char.HP,
			Gold:        g.char.Gold,
			XP:          g.char.XP,
			NextLevelXP: g.char.NextLevelXP,
			Stats:       st,
			Equipment:   make(map[resource.Slot]*item.Item, len(g.char.Equipment)),
			AttackBar:   g.encounter.PlayerTimer().Fraction(),
		},
		Inventory:  g.char.InventoryView(g.res, key, only),
		Encounter:  g.encounter.State().String(),
		Respawn:    g.encounter.RespawnTimer().Fraction(),
		Zone:       g.zones.CurrentID(),
		Death:      g.Death(),
		EndRun:     g.endRunLabel,
		Ascensions: g.asc.Count(),
		Streak:     g.streak,
		RunKills:   g.runKills,
		AutoSell:   g.autoSell.Clone(),
		Guaranteed: g.rewarder.GuaranteedDrops,
		Dirty:      g.dirty,
	}
	for slot, it := range g.char.Equipment {
		v.Character.Equipment[slot] = it.Clone()
	}
	for i, it := range v.Inventory {
		v.Inventory[i] = it.Clone()
	}
	if e := g.encounter.Enemy(); e != nil {
		v.Enemy = &EnemyView{
			EnemySnapshot: battle.Snapshot(e),
			AttackBar:     g.encounter.EnemyTimer().Fraction(),
		}
	}
	for _, z := range g.res.Zones {
		zv := ZoneView{
			ID:          z.ID,
			Name:        z.Name,
			UnlockLevel: z.UnlockLevel,
			Unlocked:    g.zones.IsUnlocked(z.ID),
			Rest:        z.Rest,
			Kills:       g.zones.Kills(z.ID),
		}
		if z.Boss != nil {
			zv.BossKills = z.Boss.RequiredKills
		}
		v.Zones = append(v.Zones, zv)
	}
	return v
}

// TalentView is one node of the talent screen.
type TalentView struct {
	Pathway     string   `json:"pathway"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tier        int      `json:"tier"`
	Level       int      `json:"level"`
	MaxLevel    int      `json:"maxLevel"`
	Cost        int      `json:"cost"`
	Requires    []string `json:"requires,omitempty"`
	Affordable  bool     `json:"canAllocate"`
}

// Talents lists every talent node with its allocation state.
func (g *Game) Talents() []TalentView {
	var out []TalentView
	for _, p := range g.res.Pathways {
		for _, n := range p.Nodes {
			out = append(out, TalentView{
				Pathway:     p.ID,
				ID:          n.ID,
				Name:        n.Name,
				Description: n.Description,
				Tier:        n.Tier,
				Level:       g.tree.Level(p.ID, n.ID),
				MaxLevel:    n.MaxLevel,
				Cost:        g.tree.Cost(p.ID, n.ID),
				Requires:    n.Requires,
				Affordable:  g.tree.CanAllocate(p.ID, n.ID, g.char.Gold),
			})
		}
	}
	return out
}
