package resource

// ---- Catalog Data Structures ----

// Stats is the set of additive stat deltas carried by item templates, affixes
// and equipped items. Percent-like stats (crit, dodge, block, speed) are whole
// percentage points.
type Stats struct {
	Attack      int `yaml:"attack" json:"attack,omitempty"`
	MaxHP       int `yaml:"maxHp" json:"maxHp,omitempty"`
	AttackSpeed int `yaml:"attackSpeed" json:"attackSpeed,omitempty"`
	CritChance  int `yaml:"critChance" json:"critChance,omitempty"`
	CritDamage  int `yaml:"critDamage" json:"critDamage,omitempty"`
	Dodge       int `yaml:"dodge" json:"dodge,omitempty"`
	BlockChance int `yaml:"blockChance" json:"blockChance,omitempty"`
	LifeSteal   int `yaml:"lifeSteal" json:"lifeSteal,omitempty"`
}

// Add returns s + o field by field.
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Attack:      s.Attack + o.Attack,
		MaxHP:       s.MaxHP + o.MaxHP,
		AttackSpeed: s.AttackSpeed + o.AttackSpeed,
		CritChance:  s.CritChance + o.CritChance,
		CritDamage:  s.CritDamage + o.CritDamage,
		Dodge:       s.Dodge + o.Dodge,
		BlockChance: s.BlockChance + o.BlockChance,
		LifeSteal:   s.LifeSteal + o.LifeSteal,
	}
}

// Sub returns s - o field by field.
func (s Stats) Sub(o Stats) Stats {
	return Stats{
		Attack:      s.Attack - o.Attack,
		MaxHP:       s.MaxHP - o.MaxHP,
		AttackSpeed: s.AttackSpeed - o.AttackSpeed,
		CritChance:  s.CritChance - o.CritChance,
		CritDamage:  s.CritDamage - o.CritDamage,
		Dodge:       s.Dodge - o.Dodge,
		BlockChance: s.BlockChance - o.BlockChance,
		LifeSteal:   s.LifeSteal - o.LifeSteal,
	}
}

// Slot is an equipment slot and also the item type occupying it.
type Slot string

const (
	SlotWeapon   Slot = "weapon"
	SlotOffhand  Slot = "offhand"
	SlotHelmet   Slot = "helmet"
	SlotBody     Slot = "body"
	SlotLegs     Slot = "legs"
	SlotBelt     Slot = "belt"
	SlotBoots    Slot = "boots"
	SlotNecklace Slot = "necklace"
	SlotRing     Slot = "ring"
)

// AllSlots lists the equipment slots in display order.
var AllSlots = []Slot{
	SlotWeapon, SlotOffhand, SlotHelmet, SlotBody, SlotLegs,
	SlotBelt, SlotBoots, SlotNecklace, SlotRing,
}

// ValidSlot reports whether s names an equipment slot.
func ValidSlot(s Slot) bool {
	for _, v := range AllSlots {
		if v == s {
			return true
		}
	}
	return false
}

// HandType distinguishes one- and two-handed weapons.
type HandType string

const (
	OneHanded HandType = "1h"
	TwoHanded HandType = "2h"
)

// Rarity is an item quality tier name.
type Rarity string

const (
	Common    Rarity = "common"
	Uncommon  Rarity = "uncommon"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
)

// RarityDef describes one rarity tier: its roll weight out of 100, the number
// of affixes an item of this tier receives, its price multiplier and the affix
// pools it draws from.
type RarityDef struct {
	Name            Rarity   `yaml:"name"`
	Chance          float64  `yaml:"chance"`
	AffixCount      int      `yaml:"affix_count"`
	PriceMultiplier float64  `yaml:"price_multiplier"`
	Color           string   `yaml:"color"`
	Prefixes        []string `yaml:"prefixes"`
	Suffixes        []string `yaml:"suffixes"`
}

// AffixKind is either prefix or suffix.
type AffixKind string

const (
	Prefix AffixKind = "prefix"
	Suffix AffixKind = "suffix"
)

// Affix is a named stat modifier that may roll on items of the allowed types.
type Affix struct {
	Name         string    `yaml:"name"`
	Kind         AffixKind `yaml:"-"`
	Stats        Stats     `yaml:"stats"`
	AllowedTypes []Slot    `yaml:"allowed"`
}

// Allows reports whether the affix may roll on an item of slot s.
func (a *Affix) Allows(s Slot) bool {
	for _, t := range a.AllowedTypes {
		if t == s {
			return true
		}
	}
	return false
}

// BaseItem is an item template. Weapons carry a hand type and a base attack
// interval in milliseconds.
type BaseItem struct {
	Name               string   `yaml:"name"`
	Slot               Slot     `yaml:"-"`
	Stats              Stats    `yaml:"stats"`
	HandType           HandType `yaml:"hand"`
	BaseAttackInterval int      `yaml:"attack_interval"`
	BaseValue          int      `yaml:"base_value"`
}

// EnemyDef is a spawnable enemy template.
type EnemyDef struct {
	Name           string `yaml:"name"`
	HP             int    `yaml:"hp"`
	Attack         int    `yaml:"attack"`
	XP             int    `yaml:"xp"`
	Gold           int    `yaml:"gold"`
	AttackInterval int    `yaml:"attack_interval"`
}

// BossDef is an enemy that appears after RequiredKills regular kills and
// always drops an item of GuaranteedDrop rarity.
type BossDef struct {
	EnemyDef       `yaml:",inline"`
	RequiredKills  int    `yaml:"required_kills"`
	GuaranteedDrop Rarity `yaml:"guaranteed_drop"`
}

// Zone is a combat area with its enemy pool, loot table and unlock level.
type Zone struct {
	ID              string     `yaml:"id"`
	Name            string     `yaml:"name"`
	Description     string     `yaml:"description"`
	Order           int        `yaml:"order"`
	UnlockLevel     int        `yaml:"unlock_level"`
	Rest            bool       `yaml:"rest"`
	DropChance      float64    `yaml:"drop_chance"`
	AllowedRarities []Rarity   `yaml:"allowed_rarities"`
	Enemies         []EnemyDef `yaml:"enemies"`
	Boss            *BossDef   `yaml:"boss"`
}

// EffectKind identifies what a talent effect modifies.
type EffectKind string

const (
	EffectAttackFlat    EffectKind = "attack_flat"
	EffectAttackPct     EffectKind = "attack_pct"
	EffectAttackMult    EffectKind = "attack_mult"
	EffectCritChance    EffectKind = "crit_chance"
	EffectCritDamage    EffectKind = "crit_damage"
	EffectAttackSpeed   EffectKind = "attack_speed"
	EffectDodge         EffectKind = "dodge"
	EffectBlock         EffectKind = "block"
	EffectGoldPct       EffectKind = "gold_pct"
	EffectGoldMult      EffectKind = "gold_mult"
	EffectGoldStreak    EffectKind = "gold_streak"
	EffectStreakCapPct  EffectKind = "streak_cap_pct"
	EffectDropPct       EffectKind = "drop_pct"
	EffectRarityUpgrade EffectKind = "rarity_upgrade"
	EffectSellPct       EffectKind = "sell_pct"
	EffectDuplicateDrop EffectKind = "duplicate_drop"
	EffectXPPct         EffectKind = "xp_pct"
	EffectXPMult        EffectKind = "xp_mult"
	EffectXPReduction   EffectKind = "xp_reduction"
	EffectXPBurst       EffectKind = "xp_burst"
	EffectStudyHabits   EffectKind = "study_habits"
	EffectPassiveXP     EffectKind = "passive_xp"
	EffectStartLevel    EffectKind = "start_level"
	EffectCostDiscount  EffectKind = "cost_discount"
)

// Effect is one modifier of a talent node. PerLevel scales with the
// allocated rank; Flat applies once the node has at least one rank.
type Effect struct {
	Kind     EffectKind `yaml:"kind"`
	PerLevel float64    `yaml:"per_level"`
	Flat     float64    `yaml:"flat"`
}

// TalentNode is one node of a pathway DAG.
type TalentNode struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Cost        int      `yaml:"cost"`
	MaxLevel    int      `yaml:"max_level"`
	Tier        int      `yaml:"tier"`
	Requires    []string `yaml:"requires"`
	Effects     []Effect `yaml:"effects"`
}

// Pathway is a named talent tree.
type Pathway struct {
	ID          string        `yaml:"id"`
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Nodes       []*TalentNode `yaml:"nodes"`
}

// Node returns the node with the given id, or nil.
func (p *Pathway) Node(id string) *TalentNode {
	for _, n := range p.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// StartingItem is the weapon every run begins with.
type StartingItem struct {
	Name               string   `yaml:"name"`
	Slot               Slot     `yaml:"slot"`
	Rarity             Rarity   `yaml:"rarity"`
	Stats              Stats    `yaml:"stats"`
	HandType           HandType `yaml:"hand"`
	BaseAttackInterval int      `yaml:"attack_interval"`
	Price              int      `yaml:"price"`
}

// LevelUpRules holds the per-level growth constants.
type LevelUpRules struct {
	HP              int     `yaml:"hp"`
	Attack          int     `yaml:"attack"`
	HealPct         float64 `yaml:"heal_pct"`
	ThresholdGrowth float64 `yaml:"threshold_growth"`
	MaxXPReduction  float64 `yaml:"max_xp_reduction"`
}

// Rules are the global balance constants of a run.
type Rules struct {
	BaseHP                int          `yaml:"base_hp"`
	BaseAttack            int          `yaml:"base_attack"`
	XPThreshold           int          `yaml:"xp_threshold"`
	StartingZone          string       `yaml:"starting_zone"`
	StartingZones         []string     `yaml:"starting_zones"`
	StartingWeapon        StartingItem `yaml:"starting_weapon"`
	LevelUp               LevelUpRules `yaml:"level_up"`
	DefaultAttackInterval int          `yaml:"default_attack_interval"`
	MinAttackInterval     int          `yaml:"min_attack_interval"`
	DefaultItemValue      int          `yaml:"default_item_value"`
	SellRatio             float64      `yaml:"sell_ratio"`
	BlockReduction        float64      `yaml:"block_reduction"`
	GoldRollMin           float64      `yaml:"gold_roll_min"`
	BurstEvery            int          `yaml:"burst_every"`
	BaseStreakCap         int          `yaml:"base_streak_cap"`
	StudyIntervalMs       int          `yaml:"study_interval_ms"`
	PassiveIntervalMs     int          `yaml:"passive_interval_ms"`
	DeathMessages         []string     `yaml:"death_messages"`
}
