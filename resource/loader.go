package resource

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var embedded embed.FS

// armorSlots is what the "@armor" shorthand in affix tables expands to.
var armorSlots = []Slot{SlotHelmet, SlotBody, SlotLegs, SlotBoots, SlotBelt, SlotOffhand}

// ---- ResourceLoader ----

// ResourceLoader reads and holds the static game catalog. The catalog is
// immutable once Load returns.
type ResourceLoader struct {
	// DataPath overrides the embedded catalog when non-empty.
	DataPath string

	Rarities  []*RarityDef
	Prefixes  map[string]*Affix
	Suffixes  map[string]*Affix
	BaseItems map[Slot][]*BaseItem
	Zones     []*Zone
	Pathways  []*Pathway
	Rules     *Rules

	fsys      fs.FS
	zoneIndex map[string]*Zone
}

// NewLoader creates a ResourceLoader. An empty dataPath selects the catalog
// compiled into the binary.
func NewLoader(dataPath string) *ResourceLoader {
	return &ResourceLoader{
		DataPath:  dataPath,
		Prefixes:  make(map[string]*Affix),
		Suffixes:  make(map[string]*Affix),
		BaseItems: make(map[Slot][]*BaseItem),
		zoneIndex: make(map[string]*Zone),
	}
}

// Load reads all catalog files and validates cross references.
func (rl *ResourceLoader) Load() error {
	if rl.DataPath != "" {
		rl.fsys = os.DirFS(rl.DataPath)
	} else {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return fmt.Errorf("resource: embedded catalog: %w", err)
		}
		rl.fsys = sub
	}
	loaders := []func() error{
		rl.loadRules,
		rl.loadRarities,
		rl.loadAffixes,
		rl.loadItems,
		rl.loadZones,
		rl.loadTalents,
	}
	for _, fn := range loaders {
		if err := fn(); err != nil {
			return err
		}
	}
	return rl.validate()
}

// MustLoadDefault loads the embedded catalog and panics on failure. Intended
// for tests and tools where the embedded data is known good.
func MustLoadDefault() *ResourceLoader {
	rl := NewLoader("")
	if err := rl.Load(); err != nil {
		panic(err)
	}
	return rl
}

func loadYAML[T any](fsys fs.FS, file string, out *T) error {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("resource: read %s: %w", file, err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("resource: parse %s: %w", file, err)
	}
	return nil
}

func (rl *ResourceLoader) loadRules() error {
	rl.Rules = &Rules{}
	return loadYAML(rl.fsys, "rules.yaml", rl.Rules)
}

func (rl *ResourceLoader) loadRarities() error {
	var doc struct {
		Rarities []*RarityDef `yaml:"rarities"`
	}
	if err := loadYAML(rl.fsys, "rarities.yaml", &doc); err != nil {
		return err
	}
	rl.Rarities = doc.Rarities
	return nil
}

func (rl *ResourceLoader) loadAffixes() error {
	var doc struct {
		Prefixes []*Affix `yaml:"prefixes"`
		Suffixes []*Affix `yaml:"suffixes"`
	}
	if err := loadYAML(rl.fsys, "affixes.yaml", &doc); err != nil {
		return err
	}
	for _, a := range doc.Prefixes {
		a.Kind = Prefix
		a.AllowedTypes = expandSlots(a.AllowedTypes)
		rl.Prefixes[a.Name] = a
	}
	for _, a := range doc.Suffixes {
		a.Kind = Suffix
		a.AllowedTypes = expandSlots(a.AllowedTypes)
		rl.Suffixes[a.Name] = a
	}
	return nil
}

// expandSlots resolves the "@armor" and "@all" shorthands and drops duplicates.
func expandSlots(in []Slot) []Slot {
	seen := make(map[Slot]bool)
	var out []Slot
	add := func(s Slot) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range in {
		switch s {
		case "@armor":
			for _, a := range armorSlots {
				add(a)
			}
		case "@all":
			for _, a := range AllSlots {
				add(a)
			}
		default:
			add(s)
		}
	}
	return out
}

func (rl *ResourceLoader) loadItems() error {
	doc := make(map[Slot][]*BaseItem)
	if err := loadYAML(rl.fsys, "items.yaml", &doc); err != nil {
		return err
	}
	for slot, items := range doc {
		for _, it := range items {
			it.Slot = slot
			if it.BaseValue <= 0 {
				it.BaseValue = rl.Rules.DefaultItemValue
			}
		}
		rl.BaseItems[slot] = items
	}
	return nil
}

func (rl *ResourceLoader) loadZones() error {
	var doc struct {
		Zones []*Zone `yaml:"zones"`
	}
	if err := loadYAML(rl.fsys, "zones.yaml", &doc); err != nil {
		return err
	}
	sort.SliceStable(doc.Zones, func(i, j int) bool { return doc.Zones[i].Order < doc.Zones[j].Order })
	rl.Zones = doc.Zones
	for _, z := range rl.Zones {
		for i := range z.Enemies {
			if z.Enemies[i].AttackInterval <= 0 {
				z.Enemies[i].AttackInterval = rl.Rules.DefaultAttackInterval
			}
		}
		if z.Boss != nil && z.Boss.AttackInterval <= 0 {
			z.Boss.AttackInterval = rl.Rules.DefaultAttackInterval
		}
		rl.zoneIndex[z.ID] = z
	}
	return nil
}

func (rl *ResourceLoader) loadTalents() error {
	var doc struct {
		Pathways []*Pathway `yaml:"pathways"`
	}
	if err := loadYAML(rl.fsys, "talents.yaml", &doc); err != nil {
		return err
	}
	for _, p := range doc.Pathways {
		for _, n := range p.Nodes {
			if n.MaxLevel <= 0 {
				n.MaxLevel = 1
			}
		}
	}
	rl.Pathways = doc.Pathways
	return nil
}

// validate checks that every name referenced across files resolves.
func (rl *ResourceLoader) validate() error {
	var problems []string
	for _, r := range rl.Rarities {
		for _, name := range r.Prefixes {
			if rl.Prefixes[name] == nil {
				problems = append(problems, fmt.Sprintf("rarity %s: unknown prefix %q", r.Name, name))
			}
		}
		for _, name := range r.Suffixes {
			if rl.Suffixes[name] == nil {
				problems = append(problems, fmt.Sprintf("rarity %s: unknown suffix %q", r.Name, name))
			}
		}
	}
	for _, z := range rl.Zones {
		for _, r := range z.AllowedRarities {
			if rl.Rarity(r) == nil {
				problems = append(problems, fmt.Sprintf("zone %s: unknown rarity %q", z.ID, r))
			}
		}
		if z.Boss != nil && z.Boss.RequiredKills <= 0 {
			problems = append(problems, fmt.Sprintf("zone %s: boss requires no kills", z.ID))
		}
	}
	for _, p := range rl.Pathways {
		for _, n := range p.Nodes {
			for _, req := range n.Requires {
				if p.Node(req) == nil {
					problems = append(problems, fmt.Sprintf("talent %s/%s: unknown prerequisite %q", p.ID, n.ID, req))
				}
			}
		}
	}
	if rl.Rules != nil {
		if rl.Zone(rl.Rules.StartingZone) == nil {
			problems = append(problems, fmt.Sprintf("rules: unknown starting zone %q", rl.Rules.StartingZone))
		}
		for _, id := range rl.Rules.StartingZones {
			if rl.Zone(id) == nil {
				problems = append(problems, fmt.Sprintf("rules: unknown starting zone %q", id))
			}
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("resource: invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Rarity returns the tier definition with the given name, or nil.
func (rl *ResourceLoader) Rarity(name Rarity) *RarityDef {
	for _, r := range rl.Rarities {
		if r.Name == name {
			return r
		}
	}
	return nil
}

// RarityRank returns the tier index of name (common = 0), or -1 if unknown.
func (rl *ResourceLoader) RarityRank(name Rarity) int {
	for i, r := range rl.Rarities {
		if r.Name == name {
			return i
		}
	}
	return -1
}

// Zone returns the zone with the given id, or nil.
func (rl *ResourceLoader) Zone(id string) *Zone {
	return rl.zoneIndex[id]
}

// Pathway returns the talent pathway with the given id, or nil.
func (rl *ResourceLoader) Pathway(id string) *Pathway {
	for _, p := range rl.Pathways {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// TalentNode returns the node id in pathway, or nil.
func (rl *ResourceLoader) TalentNode(pathway, id string) *TalentNode {
	p := rl.Pathway(pathway)
	if p == nil {
		return nil
	}
	return p.Node(id)
}

// Slots returns the slots that have at least one base item, in display order.
func (rl *ResourceLoader) Slots() []Slot {
	var out []Slot
	for _, s := range AllSlots {
		if len(rl.BaseItems[s]) > 0 {
			out = append(out, s)
		}
	}
	return out
}
