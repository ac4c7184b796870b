// Package talent tracks talent allocations across the power, wealth and
// knowledge pathways and folds them into stat and reward bonuses.
package talent

import (
	"github.com/kasuganosora/idlerpg/resource"
)

// Allocations maps pathway id -> node id -> allocated level.
type Allocations map[string]map[string]int

// Clone returns a deep copy.
func (a Allocations) Clone() Allocations {
	out := make(Allocations, len(a))
	for p, nodes := range a {
		m := make(map[string]int, len(nodes))
		for id, lvl := range nodes {
			m[id] = lvl
		}
		out[p] = m
	}
	return out
}

// Wallet is whatever pays for talent ranks.
type Wallet interface {
	CurrentGold() int
	SpendGold(amount int) bool
}

// Tree holds the allocation state for one save. Allocations survive
// ascension; only Restore replaces them.
type Tree struct {
	res   *resource.ResourceLoader
	alloc Allocations
}

// NewTree creates an empty tree over the catalog's pathways.
func NewTree(res *resource.ResourceLoader) *Tree {
	t := &Tree{res: res, alloc: make(Allocations)}
	for _, p := range res.Pathways {
		t.alloc[p.ID] = make(map[string]int)
	}
	return t
}

// Level returns the allocated level of a node, 0 when unknown.
func (t *Tree) Level(pathway, node string) int {
	return t.alloc[pathway][node]
}

// Cost returns the gold needed for the next rank of a node:
// baseCost x (level+1), reduced by the cost-discount ultimate.
func (t *Tree) Cost(pathway, node string) int {
	n := t.res.TalentNode(pathway, node)
	if n == nil {
		return 0
	}
	cost := n.Cost * (t.Level(pathway, node) + 1)
	if d := t.Bonuses().CostDiscountPct; d > 0 {
		cost = int(float64(cost) * (1 - d/100))
	}
	return cost
}

// CanAllocate reports whether one more rank can be bought with gold.
func (t *Tree) CanAllocate(pathway, node string, gold int) bool {
	n := t.res.TalentNode(pathway, node)
	if n == nil {
		return false
	}
	if t.Level(pathway, node) >= n.MaxLevel {
		return false
	}
	if gold < t.Cost(pathway, node) {
		return false
	}
	for _, req := range n.Requires {
		if t.Level(pathway, req) == 0 {
			return false
		}
	}
	return true
}

// Allocate buys exactly one rank, charging w. It returns false and leaves
// both the tree and the wallet untouched when the purchase is not allowed.
func (t *Tree) Allocate(pathway, node string, w Wallet) bool {
	if !t.CanAllocate(pathway, node, w.CurrentGold()) {
		return false
	}
	if !w.SpendGold(t.Cost(pathway, node)) {
		return false
	}
	if t.alloc[pathway] == nil {
		t.alloc[pathway] = make(map[string]int)
	}
	t.alloc[pathway][node]++
	return true
}

// TotalPoints is the sum of all allocated levels.
func (t *Tree) TotalPoints() int {
	total := 0
	for _, nodes := range t.alloc {
		for _, lvl := range nodes {
			total += lvl
		}
	}
	return total
}

// Snapshot returns a copy of the allocation state.
func (t *Tree) Snapshot() Allocations {
	return t.alloc.Clone()
}

// Restore replaces the allocation state, dropping unknown nodes and clamping
// levels to each node's maximum.
func (t *Tree) Restore(a Allocations) {
	t.alloc = make(Allocations)
	for _, p := range t.res.Pathways {
		t.alloc[p.ID] = make(map[string]int)
		for id, lvl := range a[p.ID] {
			n := p.Node(id)
			if n == nil || lvl <= 0 {
				continue
			}
			if lvl > n.MaxLevel {
				lvl = n.MaxLevel
			}
			t.alloc[p.ID][id] = lvl
		}
	}
}

// Bonuses folds every allocated effect into one value.
func (t *Tree) Bonuses() Bonuses {
	b := NewBonuses()
	for _, p := range t.res.Pathways {
		for _, n := range p.Nodes {
			lvl := t.Level(p.ID, n.ID)
			if lvl == 0 {
				continue
			}
			for _, e := range n.Effects {
				b.apply(e, lvl)
			}
		}
	}
	return b
}
