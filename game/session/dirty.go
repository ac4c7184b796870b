package session

// Dirty reports which presentation regions changed since the last poll.
type Dirty struct {
	Character bool `json:"character"`
	Inventory bool `json:"inventory"`
	Enemy     bool `json:"enemy"`
}

// Any reports whether at least one region needs a redraw.
func (d Dirty) Any() bool { return d.Character || d.Inventory || d.Enemy }

func (d *Dirty) all() {
	d.Character, d.Inventory, d.Enemy = true, true, true
}

// TakeDirty returns the pending flags and clears them.
func (g *Game) TakeDirty() Dirty {
	d := g.dirty
	g.dirty = Dirty{}
	return d
}

// PeekDirty returns the pending flags without clearing them.
func (g *Game) PeekDirty() Dirty { return g.dirty }
