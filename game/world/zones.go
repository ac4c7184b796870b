package world

import (
	"errors"

	"github.com/kasuganosora/idlerpg/resource"
)

var (
	ErrUnknownZone = errors.New("world: unknown zone")
	ErrZoneLocked  = errors.New("world: zone is locked")
)

// Zones tracks the current zone, the unlocked set and per-zone kill
// counters. The unlocked set only grows until Reset.
type Zones struct {
	res *resource.ResourceLoader

	current  string
	unlocked map[string]bool
	kills    map[string]int
	// bossCleared records the kill count at which each zone's boss was last
	// defeated so one multiple never yields two bosses.
	bossCleared map[string]int
}

// NewZones creates the zone state for a fresh run.
func NewZones(res *resource.ResourceLoader) *Zones {
	z := &Zones{res: res}
	z.Reset()
	return z
}

// Reset returns to the starting subset and starting zone, clearing counters.
func (z *Zones) Reset() {
	z.unlocked = make(map[string]bool)
	for _, id := range z.res.Rules.StartingZones {
		z.unlocked[id] = true
	}
	z.current = z.res.Rules.StartingZone
	z.unlocked[z.current] = true
	z.kills = make(map[string]int)
	z.bossCleared = make(map[string]int)
}

// Current returns the current zone definition.
func (z *Zones) Current() *resource.Zone { return z.res.Zone(z.current) }

// CurrentID returns the current zone id.
func (z *Zones) CurrentID() string { return z.current }

// IsUnlocked reports whether id is in the unlocked set.
func (z *Zones) IsUnlocked(id string) bool { return z.unlocked[id] }

// Unlocked lists unlocked zone ids in display order.
func (z *Zones) Unlocked() []string {
	var out []string
	for _, zone := range z.res.Zones {
		if z.unlocked[zone.ID] {
			out = append(out, zone.ID)
		}
	}
	return out
}

// CheckUnlocks adds every zone whose unlock level is at most level and
// returns the newly unlocked ones.
func (z *Zones) CheckUnlocks(level int) []*resource.Zone {
	var added []*resource.Zone
	for _, zone := range z.res.Zones {
		if zone.UnlockLevel <= level && !z.unlocked[zone.ID] {
			z.unlocked[zone.ID] = true
			added = append(added, zone)
		}
	}
	return added
}

// Move switches to zone id and resets its kill counter.
func (z *Zones) Move(id string) error {
	zone := z.res.Zone(id)
	if zone == nil {
		return ErrUnknownZone
	}
	if !z.unlocked[id] {
		return ErrZoneLocked
	}
	z.current = id
	z.ResetKills(id)
	return nil
}

// Kills returns the non-boss kill counter of zone id.
func (z *Zones) Kills(id string) int { return z.kills[id] }

// RecordKill increments the counter of zone id and returns the new value.
func (z *Zones) RecordKill(id string) int {
	z.kills[id]++
	return z.kills[id]
}

// RecordBossKill marks the current multiple of zone id as cleared.
func (z *Zones) RecordBossKill(id string) {
	z.bossCleared[id] = z.kills[id]
}

// ResetKills zeroes the counters of zone id.
func (z *Zones) ResetKills(id string) {
	delete(z.kills, id)
	delete(z.bossCleared, id)
}

// BossDue reports whether the next spawn in zone id must be its boss: the
// counter is a positive exact multiple of the boss threshold that has not
// been cleared yet.
func (z *Zones) BossDue(id string) bool {
	zone := z.res.Zone(id)
	if zone == nil || zone.Boss == nil || zone.Boss.RequiredKills <= 0 {
		return false
	}
	k := z.kills[id]
	if k == 0 || k%zone.Boss.RequiredKills != 0 {
		return false
	}
	cleared, ok := z.bossCleared[id]
	return !ok || cleared != k
}

// State is the serializable form of Zones.
type State struct {
	Current  string         `json:"currentZone"`
	Unlocked []string       `json:"unlockedZones"`
	Kills    map[string]int `json:"killCounts,omitempty"`
	Bosses   map[string]int `json:"bossCleared,omitempty"`
}

// Snapshot captures the zone state.
func (z *Zones) Snapshot() State {
	return State{
		Current:  z.current,
		Unlocked: z.Unlocked(),
		Kills:    copyCounts(z.kills),
		Bosses:   copyCounts(z.bossCleared),
	}
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Restore applies a saved state. Unknown zones are dropped, a missing or
// unknown current zone falls back to the starting zone and an empty
// unlocked list falls back to the starting subset.
func (z *Zones) Restore(s State) {
	z.Reset()
	if len(s.Unlocked) > 0 {
		z.unlocked = make(map[string]bool)
		for _, id := range s.Unlocked {
			if z.res.Zone(id) != nil {
				z.unlocked[id] = true
			}
		}
	}
	if s.Current != "" && z.res.Zone(s.Current) != nil {
		z.current = s.Current
	}
	z.unlocked[z.current] = true
	for id, k := range s.Kills {
		if z.res.Zone(id) != nil && k > 0 {
			z.kills[id] = k
		}
	}
	for id, k := range s.Bosses {
		if z.res.Zone(id) != nil {
			z.bossCleared[id] = k
		}
	}
}
