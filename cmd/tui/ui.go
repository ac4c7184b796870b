package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/kasuganosora/idlerpg/game/item"
	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/session"
	"github.com/kasuganosora/idlerpg/resource"
	"github.com/mattn/go-runewidth"
)

var (
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleGood   = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleBad    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleGold   = tcell.StyleDefault.Foreground(tcell.ColorGold)
	styleBorder = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
)

var rarityStyles = map[resource.Rarity]tcell.Style{
	resource.Common:    styleText,
	resource.Uncommon:  tcell.StyleDefault.Foreground(tcell.ColorGreen),
	resource.Rare:      tcell.StyleDefault.Foreground(tcell.ColorDodgerBlue),
	resource.Epic:      tcell.StyleDefault.Foreground(tcell.ColorMediumPurple),
	resource.Legendary: tcell.StyleDefault.Foreground(tcell.ColorOrange),
}

var categoryStyles = map[session.Category]tcell.Style{
	session.CategoryCombat: styleText,
	session.CategoryLoot:   styleGood,
	session.CategoryShop:   styleGold,
	session.CategorySystem: tcell.StyleDefault.Foreground(tcell.ColorLightCyan),
}

// rect is a screen region.
type rect struct{ x, y, w, h int }

// layout splits the screen into the panels. Panels shrink with the screen
// but never go negative.
type layout struct {
	header, character, enemy, inventory, log, footer rect
}

const topPanelHeight = 10

func newLayout(w, h int) layout {
	half := w / 2
	bottomY := 1 + topPanelHeight
	bottomH := max(h-bottomY-2, 0)
	return layout{
		header:    rect{0, 0, w, 1},
		character: rect{0, 1, half, topPanelHeight},
		enemy:     rect{half, 1, w - half, topPanelHeight},
		inventory: rect{0, bottomY, half, bottomH},
		log:       rect{half, bottomY, w - half, bottomH},
		footer:    rect{0, max(h-2, 0), w, 2},
	}
}

// ui renders a game onto a tcell screen. It owns neither; the caller steps
// the game and feeds keys in on the same goroutine.
type ui struct {
	screen tcell.Screen
	game   *session.Game
	lay    layout

	lastSeq int64
	notice  string
}

func newUI(screen tcell.Screen, g *session.Game) *ui {
	u := &ui{screen: screen, game: g}
	u.resize()
	return u
}

func (u *ui) resize() {
	w, h := u.screen.Size()
	u.lay = newLayout(w, h)
}

// redraw paints the regions flagged in d. full repaints everything, which
// is needed after a resize.
func (u *ui) redraw(d session.Dirty, full bool) {
	v := u.game.View(player.SortAttack, "")
	if full {
		u.screen.Clear()
		d = session.Dirty{Character: true, Inventory: true, Enemy: true}
	}
	if full || d.Character {
		u.drawHeader(v)
		u.drawCharacter(v)
		u.drawFooter(v)
	}
	if full || d.Enemy {
		u.drawEnemy(v)
	}
	if full || d.Inventory {
		u.drawInventory(v)
	}
	u.drawBars(v)

	entries := u.game.Log("")
	if n := len(entries); full || (n > 0 && entries[n-1].Seq != u.lastSeq) {
		u.drawLog(entries)
	}
	u.screen.Show()
}

// ---- Panels ----

func (u *ui) drawHeader(v session.View) {
	r := u.lay.header
	u.clear(r)
	title := " Idle RPG "
	if v.Ascensions > 0 {
		title += fmt.Sprintf("| Ascension %d ", v.Ascensions)
	}
	u.text(r.x, r.y, r.w, title, styleTitle)
	if u.notice != "" {
		u.text(r.x+runewidth.StringWidth(title)+1, r.y, r.w-runewidth.StringWidth(title)-1, u.notice, styleDim)
	}
}

func (u *ui) drawCharacter(v session.View) {
	r := u.lay.character
	u.box(r, "Character")
	c := v.Character
	st := c.Stats
	lines := []struct {
		s     string
		style tcell.Style
	}{
		{fmt.Sprintf("Level %d   XP %d/%d", c.Level, c.XP, c.NextLevelXP), styleText},
		{fmt.Sprintf("HP %d/%d", c.HP, st.MaxHP), hpStyle(c.HP, st.MaxHP)},
		{fmt.Sprintf("Gold %d   Streak %d", c.Gold, v.Streak), styleGold},
		{fmt.Sprintf("ATK %.0f   Interval %dms", st.Attack, st.AttackInterval), styleText},
		{fmt.Sprintf("Crit %.0f%%  Dodge %.0f%%  Block %.0f%%", st.CritChance, st.Dodge, st.BlockChance), styleText},
		{fmt.Sprintf("Kills this run %d", v.RunKills), styleDim},
	}
	for i, l := range lines {
		u.text(r.x+2, r.y+1+i, r.w-4, l.s, l.style)
	}
	if v.Death != nil {
		u.text(r.x+2, r.y+r.h-2, r.w-4, "DEFEATED: "+v.Death.Message+" [a] ascend", styleBad)
	}
}

func (u *ui) drawEnemy(v session.View) {
	r := u.lay.enemy
	u.box(r, "Enemy")
	switch {
	case v.Death != nil:
		u.text(r.x+2, r.y+1, r.w-4, "Your run is over.", styleBad)
	case v.Enemy != nil:
		e := v.Enemy
		name := e.Name
		style := styleText
		if e.IsBoss {
			name = "BOSS " + name
			style = styleBad
		}
		u.text(r.x+2, r.y+1, r.w-4, name, style)
		u.text(r.x+2, r.y+2, r.w-4, fmt.Sprintf("HP %d/%d", e.HP, e.MaxHP), hpStyle(e.HP, e.MaxHP))
		u.text(r.x+2, r.y+3, r.w-4, fmt.Sprintf("ATK %d   Interval %dms", e.Attack, e.AttackInterval), styleText)
	case u.restZone(v):
		u.text(r.x+2, r.y+1, r.w-4, "Resting. No enemies here.", styleDim)
	default:
		u.text(r.x+2, r.y+1, r.w-4, "Searching for enemies...", styleDim)
	}
}

// drawBars repaints the timer rows only. They move every tick, so they are
// not tied to a dirty flag.
func (u *ui) drawBars(v session.View) {
	c := u.lay.character
	e := u.lay.enemy
	if c.h < 3 || e.h < 3 {
		return
	}
	y := c.y + c.h - 3
	u.clear(rect{c.x + 2, y, c.w - 4, 1})
	u.clear(rect{e.x + 2, y, e.w - 4, 1})
	switch {
	case v.Enemy != nil && v.Death == nil:
		u.text(c.x+2, y, c.w-4, "Attack "+bar(v.Character.AttackBar, c.w-13), styleGood)
		u.text(e.x+2, y, e.w-4, "Attack "+bar(v.Enemy.AttackBar, e.w-13), styleBad)
	case v.Encounter == "respawning":
		u.text(e.x+2, y, e.w-4, "Next   "+bar(v.Respawn, e.w-13), styleDim)
	}
}

func (u *ui) drawInventory(v session.View) {
	r := u.lay.inventory
	u.box(r, fmt.Sprintf("Inventory (%d)", len(v.Inventory)))
	for i, it := range v.Inventory {
		if i >= r.h-2 {
			break
		}
		style, ok := rarityStyles[it.Rarity]
		if !ok {
			style = styleText
		}
		line := fmt.Sprintf("%-8s %s", it.Type, it.FullName)
		if it.Attack != 0 {
			line += fmt.Sprintf(" +%d", it.Attack)
		}
		u.text(r.x+2, r.y+1+i, r.w-4, line, style)
	}
}

func (u *ui) drawLog(entries []session.LogEntry) {
	r := u.lay.log
	u.box(r, "Log")
	rows := r.h - 2
	if rows <= 0 {
		return
	}
	if len(entries) > rows {
		entries = entries[len(entries)-rows:]
	}
	for i, e := range entries {
		style, ok := categoryStyles[e.Category]
		if !ok {
			style = styleText
		}
		u.text(r.x+2, r.y+1+i, r.w-4, e.Message, style)
	}
	if n := len(entries); n > 0 {
		u.lastSeq = entries[n-1].Seq
	}
}

func (u *ui) drawFooter(v session.View) {
	r := u.lay.footer
	u.clear(r)
	x := r.x
	for i, z := range v.Zones {
		if i >= 9 {
			break
		}
		label := fmt.Sprintf("%d:%s ", i+1, z.Name)
		style := styleDim
		switch {
		case z.ID == v.Zone:
			style = styleTitle
		case z.Unlocked:
			style = styleText
		}
		u.text(x, r.y, r.w-x, label, style)
		x += runewidth.StringWidth(label)
	}
	u.text(r.x, r.y+1, r.w, "[1-9] zone  [e] equip best  [s] sell junk  [a] ascend  [q] quit", styleDim)
}

func (u *ui) restZone(v session.View) bool {
	for _, z := range v.Zones {
		if z.ID == v.Zone {
			return z.Rest
		}
	}
	return false
}

// ---- Input ----

// handleKey applies one key press and reports whether the client should quit.
func (u *ui) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
		return true
	}
	if ev.Key() != tcell.KeyRune {
		return false
	}
	g := u.game
	switch r := ev.Rune(); {
	case r == 'q':
		return true
	case r >= '1' && r <= '9':
		zones := g.Resources().Zones
		idx := int(r - '1')
		if idx >= len(zones) {
			return false
		}
		if err := g.ChangeZone(zones[idx].ID); err != nil {
			u.notice = zones[idx].Name + " is locked"
		} else {
			u.notice = ""
		}
	case r == 'e':
		best := bestAttack(g.Character().Inventory)
		if best == nil {
			u.notice = "nothing to equip"
			return false
		}
		if err := g.Equip(best.ID); err != nil {
			u.notice = err.Error()
		}
	case r == 's':
		sold, gold := g.SellJunk()
		u.notice = fmt.Sprintf("sold %d for %d gold", sold, gold)
		if sold == 0 {
			u.notice = "no junk to sell (set auto-sell rules)"
		}
	case r == 'a':
		if _, err := g.Ascend(ctx); err != nil {
			u.notice = "still alive"
		} else {
			u.notice = ""
		}
	}
	u.drawHeader(g.View(player.SortNew, ""))
	return false
}

// bestAttack returns the inventory item with the highest attack, or nil.
// Ties keep the older item.
func bestAttack(inv []*item.Item) *item.Item {
	var best *item.Item
	for _, it := range inv {
		if best == nil || it.Attack > best.Attack {
			best = it
		}
	}
	return best
}

// ---- Drawing primitives ----

func (u *ui) clear(r rect) {
	for y := r.y; y < r.y+r.h; y++ {
		for x := r.x; x < r.x+r.w; x++ {
			u.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
}

func (u *ui) box(r rect, title string) {
	u.clear(r)
	if r.w < 2 || r.h < 2 {
		return
	}
	for x := r.x + 1; x < r.x+r.w-1; x++ {
		u.screen.SetContent(x, r.y, tcell.RuneHLine, nil, styleBorder)
		u.screen.SetContent(x, r.y+r.h-1, tcell.RuneHLine, nil, styleBorder)
	}
	for y := r.y + 1; y < r.y+r.h-1; y++ {
		u.screen.SetContent(r.x, y, tcell.RuneVLine, nil, styleBorder)
		u.screen.SetContent(r.x+r.w-1, y, tcell.RuneVLine, nil, styleBorder)
	}
	u.screen.SetContent(r.x, r.y, tcell.RuneULCorner, nil, styleBorder)
	u.screen.SetContent(r.x+r.w-1, r.y, tcell.RuneURCorner, nil, styleBorder)
	u.screen.SetContent(r.x, r.y+r.h-1, tcell.RuneLLCorner, nil, styleBorder)
	u.screen.SetContent(r.x+r.w-1, r.y+r.h-1, tcell.RuneLRCorner, nil, styleBorder)
	u.text(r.x+2, r.y, r.w-4, " "+title+" ", styleTitle)
}

// text writes s at (x, y), clipped to width columns. Wide runes take two
// columns.
func (u *ui) text(x, y, width int, s string, style tcell.Style) {
	if width <= 0 {
		return
	}
	s = runewidth.Truncate(s, width, "…")
	for _, ch := range s {
		u.screen.SetContent(x, y, ch, nil, style)
		x += runewidth.RuneWidth(ch)
	}
}

// bar renders frac as a fixed-width progress bar.
func bar(frac float64, width int) string {
	if width <= 2 {
		return ""
	}
	inner := width - 2
	filled := int(frac * float64(inner))
	filled = min(max(filled, 0), inner)
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", inner-filled) + "]"
}

func hpStyle(hp, maxHP int) tcell.Style {
	if maxHP > 0 && hp*4 <= maxHP {
		return styleBad
	}
	return styleGood
}
