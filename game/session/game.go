// Package session owns one complete game. It advances combat from
// host-supplied time deltas, hands victories to progression and deaths to
// the ascension flow, and exposes player commands, the activity log, dirty
// flags and save/load. A Game is not safe for concurrent use; Runner
// serializes access when several goroutines need it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kasuganosora/idlerpg/audit"
	"github.com/kasuganosora/idlerpg/game/ascension"
	"github.com/kasuganosora/idlerpg/game/battle"
	"github.com/kasuganosora/idlerpg/game/item"
	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/progression"
	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/game/talent"
	"github.com/kasuganosora/idlerpg/game/world"
	"github.com/kasuganosora/idlerpg/plugin/hook"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
)

var (
	ErrCombatActive = errors.New("session: combat is active")
	ErrDead         = errors.New("session: character is dead")
	ErrNoSave       = errors.New("session: no save data")
)

// learningReportEvery is how many Passive Learning grants are summed into
// one log line.
const learningReportEvery = 30

// RunRecorder persists finished runs.
type RunRecorder interface {
	RecordRun(entry audit.RunEntry)
}

// Options configures a Game. Zero values select the defaults.
type Options struct {
	Resources *resource.ResourceLoader
	RNG       random.Source
	Hooks     *hook.HookCenter
	Logger    *zap.Logger
	Publisher Publisher
	Recorder  RunRecorder
	// Respawn is the pause between a victory and the next spawn. Zero means 3s.
	Respawn         time.Duration
	LogCapacity     int
	GuaranteedDrops bool
	Now             func() time.Time
}

// Death describes how the current run ended.
type Death struct {
	Enemy   string `json:"enemy,omitempty"`
	Message string `json:"message"`
	Level   int    `json:"level"`
	Zone    string `json:"zone"`
}

// Game is the explicit state owner of a run and the meta progression
// around it.
type Game struct {
	res      *resource.ResourceLoader
	rules    *resource.Rules
	rng      random.Source
	hooks    *hook.HookCenter
	logger   *zap.Logger
	pub      Publisher
	recorder RunRecorder
	now      func() time.Time

	char  *player.Character
	tree  *talent.Tree
	zones *world.Zones

	gen       *item.Generator
	spawner   *world.Spawner
	encounter *battle.Encounter
	rewarder  *battle.Rewarder
	prog      *progression.Controller
	asc       *ascension.Engine
	passive   progression.Passive

	respawn  time.Duration
	autoSell player.AutoSell
	streak   int
	runKills int
	death    *Death
	// endRunLabel is the whimsical name of the voluntary end-run action,
	// re-rolled after every death.
	endRunLabel string

	learnedXP    int
	learnedTicks int

	journal *Journal
	dirty   Dirty
}

// New creates a fresh level 1 game in the starting zone.
func New(opts Options) *Game {
	if opts.Resources == nil {
		opts.Resources = resource.MustLoadDefault()
	}
	if opts.RNG == nil {
		opts.RNG = random.New(0)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Respawn <= 0 {
		opts.Respawn = 3 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	res := opts.Resources
	g := &Game{
		res:      res,
		rules:    res.Rules,
		rng:      opts.RNG,
		hooks:    opts.Hooks,
		logger:   opts.Logger,
		pub:      opts.Publisher,
		recorder: opts.Recorder,
		now:      opts.Now,
		respawn:  opts.Respawn,
		journal:  NewJournal(opts.LogCapacity),
		autoSell: player.AutoSell{
			Rarities: map[resource.Rarity]bool{},
			Types:    map[resource.Slot]bool{},
		},
	}
	g.char = player.NewCharacter(g.rules)
	g.tree = talent.NewTree(res)
	g.zones = world.NewZones(res)
	g.gen = item.NewGenerator(res, g.rng, g.logger)
	g.spawner = world.NewSpawner(g.zones, g.rng, g.logger)
	g.encounter = battle.NewEncounter(battle.Config{
		RNG:            g.rng,
		Hooks:          g.hooks,
		Logger:         g.logger,
		BlockReduction: g.rules.BlockReduction,
	})
	g.rewarder = battle.NewRewarder(res, g.gen, g.rng, g.logger)
	g.rewarder.GuaranteedDrops = opts.GuaranteedDrops
	g.prog = progression.New(res, g.zones, g.logger)
	g.asc = ascension.New(res, g.logger)

	g.char.Stats(g.tree.Bonuses(), g.rules)
	g.rollEndRunLabel()
	g.dirty.all()
	g.log(CategorySystem, "welcome", "Welcome to the Idle RPG! Your adventure begins...")
	return g
}

// Step advances the simulation by dt. It is the only time-advancing entry
// point and never blocks. Nothing advances while the character is dead.
func (g *Game) Step(ctx context.Context, dt time.Duration) {
	if dt <= 0 || g.char.IsDead() {
		return
	}
	b := g.tree.Bonuses()
	st := g.char.Stats(b, g.rules)

	g.stepPassive(ctx, dt, b)

	if g.encounter.State() == battle.NoEncounter {
		g.spawn(ctx, b, st)
		return
	}
	for _, ev := range g.encounter.Advance(ctx, dt, g.char, st) {
		g.handle(ctx, ev, b)
	}
}

func (g *Game) stepPassive(ctx context.Context, dt time.Duration, b talent.Bonuses) {
	gain := g.passive.Advance(dt, g.char.Level, b, g.rules)
	if gain.Study > 0 {
		n, ups := g.prog.GainXP(g.char, b, gain.Study)
		g.log(CategorySystem, "passive-xp", fmt.Sprintf("Study Habits: Gained %d bonus XP from passive learning!", n))
		g.dirty.Character = true
		g.levelUps(ctx, ups)
	}
	if gain.Learning > 0 {
		n, ups := g.prog.GainXP(g.char, b, gain.Learning)
		g.learnedXP += n
		g.learnedTicks++
		if g.learnedTicks >= learningReportEvery {
			g.log(CategorySystem, "passive-xp", fmt.Sprintf("Passive Learning: Gained %d XP over the last %d seconds!", g.learnedXP, g.learnedTicks))
			g.learnedXP, g.learnedTicks = 0, 0
		}
		g.dirty.Character = true
		g.levelUps(ctx, ups)
	}
}

func (g *Game) spawn(ctx context.Context, b talent.Bonuses, st player.Stats) {
	if !world.IsCombatZone(g.zones.Current()) {
		return
	}
	enemy := g.spawner.Spawn()
	if enemy == nil {
		return
	}
	for _, ev := range g.encounter.Start(ctx, enemy, st.AttackInterval) {
		g.handle(ctx, ev, b)
	}
}

func (g *Game) handle(ctx context.Context, ev battle.Event, b talent.Bonuses) {
	switch e := ev.(type) {
	case battle.EventBossWarning:
		g.log(CategoryCombat, "boss", fmt.Sprintf("The %s emerges from the depths!", e.Boss))
	case battle.EventSpawn:
		g.log(CategoryCombat, "spawn", fmt.Sprintf("A wild %s appears!", e.Enemy.Name))
		g.dirty.Enemy = true
	case battle.EventPlayerAttack:
		msg := fmt.Sprintf("You attack %s for %d damage.", e.Enemy, e.Damage)
		typ := "player-attack"
		if e.Critical {
			msg = fmt.Sprintf("CRITICAL HIT! You deal %d damage to %s!", e.Damage, e.Enemy)
			typ = "player-crit"
		}
		if e.Healed > 0 {
			msg += fmt.Sprintf(" (+%d HP)", e.Healed)
			g.dirty.Character = true
		}
		g.log(CategoryCombat, typ, msg)
		g.dirty.Enemy = true
	case battle.EventEnemyAttack:
		switch {
		case e.Dodged:
			g.log(CategoryCombat, "player-dodge", fmt.Sprintf("You dodge %s's attack!", e.Enemy))
		case e.Blocked:
			g.log(CategoryCombat, "enemy-blocked", fmt.Sprintf("You block! %s hits you for %d damage.", e.Enemy, e.Damage))
		default:
			g.log(CategoryCombat, "enemy-attack", fmt.Sprintf("%s attacks you for %d damage.", e.Enemy, e.Damage))
		}
		if e.Damage > 0 {
			g.streak = 0
		}
		g.dirty.Character = true
	case battle.EventVictory:
		g.onVictory(ctx, b)
	case battle.EventDefeat:
		g.onDefeat(ctx, e.Enemy, "")
	case battle.EventRespawnReady:
		g.dirty.Enemy = true
	}
}

func (g *Game) onVictory(ctx context.Context, b talent.Bonuses) {
	enemy := g.encounter.Enemy()
	zone := g.zones.Current()
	if enemy == nil || zone == nil {
		g.encounter.BeginRespawn(g.respawn)
		return
	}

	var kills int
	if enemy.IsBoss {
		g.zones.RecordBossKill(zone.ID)
		kills = g.zones.Kills(zone.ID)
	} else {
		kills = g.zones.RecordKill(zone.ID)
	}
	g.runKills++
	if g.encounter.TookDamage() {
		g.streak = 0
	} else if g.streak < b.StreakCap(g.rules.BaseStreakCap) {
		g.streak++
	}

	rw := g.rewarder.Roll(enemy, zone, b, kills, g.streak)
	g.char.AddGold(rw.Gold)
	if rw.Burst > 1 {
		g.log(CategoryLoot, "experience-burst", fmt.Sprintf("Experience Burst! %gx XP bonus on this kill!", rw.Burst))
	}
	g.log(CategoryLoot, "enemy-defeated", fmt.Sprintf("%s defeated! Gained %d gold and %d XP!", enemy.Name, rw.Gold, rw.XP))
	if boss := zone.Boss; !enemy.IsBoss && boss != nil && boss.RequiredKills > 0 {
		progress := (kills-1)%boss.RequiredKills + 1
		g.log(CategorySystem, "boss-progress", fmt.Sprintf("Enemies defeated: %d/%d", progress, boss.RequiredKills))
	}
	if enemy.IsBoss {
		g.log(CategorySystem, "boss-victory", fmt.Sprintf("Victory! The %s has been vanquished!", enemy.Name))
	}
	g.trigger(ctx, hook.OnEnemyDefeated, enemy)

	g.levelUps(ctx, g.prog.AddXP(g.char, b, rw.XP))
	for i := range rw.Drops {
		it := rw.Drops[i]
		g.receive(ctx, enemy.Name, &it, rw.Upgraded, b)
	}

	g.encounter.BeginRespawn(g.respawn)
	g.dirty.Character = true
	g.dirty.Enemy = true
}

func (g *Game) receive(ctx context.Context, source string, it *item.Item, upgraded bool, b talent.Bonuses) {
	g.trigger(ctx, hook.OnItemDrop, it)
	var msg string
	switch it.Rarity {
	case resource.Legendary, resource.Epic:
		msg = fmt.Sprintf("The %s dropped %s %s item! %s!", source, article(string(it.Rarity)), it.Rarity, it.FullName)
	default:
		msg = fmt.Sprintf("%s dropped %s!", source, it.FullName)
	}
	if upgraded {
		msg += " (Treasure Hunter)"
	}
	g.log(CategoryLoot, "item-drop", msg)
	g.addItem(it, b)
}

// addItem routes a new item to the inventory or straight to the merchant
// when the auto-sell filters match.
func (g *Game) addItem(it *item.Item, b talent.Bonuses) {
	if g.autoSell.Matches(it) {
		gold := item.SellValue(g.rules, it, b.SellBonus())
		g.char.AddGold(gold)
		g.log(CategoryShop, "auto-sell", fmt.Sprintf("Auto-sold %s for %d gold", it.FullName, gold))
		g.dirty.Character = true
		return
	}
	g.char.AddItem(it)
	g.dirty.Inventory = true
}

func (g *Game) levelUps(ctx context.Context, ups []progression.LevelUp) {
	for _, up := range ups {
		g.log(CategoryLoot, "level-up", fmt.Sprintf("Level up! You are now level %d!", up.Level))
		g.trigger(ctx, hook.OnPlayerLevelUp, up)
		for _, z := range up.Unlocked {
			g.log(CategorySystem, "zone-unlock", fmt.Sprintf("New zone unlocked: %s!", z.Name))
			g.trigger(ctx, hook.OnZoneUnlocked, z)
		}
	}
	if len(ups) > 0 {
		g.dirty.Character = true
	}
}

// onDefeat ends the run. The encounter stays halted until Ascend.
func (g *Game) onDefeat(ctx context.Context, enemy, message string) {
	g.encounter.Halt()
	g.passive.Reset()
	g.streak = 0
	g.zones.ResetKills(g.zones.CurrentID())
	if message == "" {
		message = g.endRunLabel
	}
	g.death = &Death{
		Enemy:   enemy,
		Message: message,
		Level:   g.char.Level,
		Zone:    g.zones.CurrentID(),
	}
	g.rollEndRunLabel()
	g.log(CategoryCombat, "player-death", "You were defeated! Choose to ascend and gain permanent power...")
	g.trigger(ctx, hook.OnPlayerDeath, *g.death)
	g.logger.Info("run ended",
		zap.String("enemy", enemy),
		zap.Int("level", g.char.Level),
		zap.String("zone", g.zones.CurrentID()))
	g.dirty.all()
}

func (g *Game) rollEndRunLabel() {
	if n := len(g.rules.DeathMessages); n > 0 {
		g.endRunLabel = g.rules.DeathMessages[random.Intn(g.rng, n)]
	}
}

func (g *Game) trigger(ctx context.Context, event string, data any) {
	if g.hooks == nil {
		return
	}
	if _, err := g.hooks.Trigger(ctx, event, data); err != nil {
		g.logger.Debug("hook interrupted", zap.String("event", event), zap.Error(err))
	}
}

func (g *Game) log(cat Category, typ, msg string) {
	e := g.journal.Append(LogEntry{
		Time:     g.now(),
		Category: cat,
		Type:     typ,
		Message:  msg,
	})
	if g.pub != nil {
		g.pub.Publish(e)
	}
}

func article(word string) string {
	if word != "" {
		switch word[0] {
		case 'a', 'e', 'i', 'o', 'u':
			return "an"
		}
	}
	return "a"
}
