// Package battle resolves the timer-driven exchange between the player and
// the single live enemy, and rolls the rewards of a victory.
package battle

import (
	"context"
	"time"

	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/game/world"
	"github.com/kasuganosora/idlerpg/plugin/hook"
	"go.uber.org/zap"
)

// State is the encounter life-cycle state.
type State int

const (
	NoEncounter State = iota
	Active
	Victory
	Defeat
	Respawning
)

func (s State) String() string {
	switch s {
	case NoEncounter:
		return "idle"
	case Active:
		return "active"
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	case Respawning:
		return "respawning"
	}
	return "unknown"
}

// Timer accumulates elapsed time towards a period.
type Timer struct {
	Elapsed time.Duration
	Period  time.Duration
}

func (t *Timer) reset(period time.Duration) {
	t.Elapsed = 0
	t.Period = period
}

// Ready reports whether the accumulator has reached its period.
func (t Timer) Ready() bool { return t.Period > 0 && t.Elapsed >= t.Period }

// Fraction is the progress in [0, 1] for attack bars.
func (t Timer) Fraction() float64 {
	if t.Period <= 0 {
		return 0
	}
	f := float64(t.Elapsed) / float64(t.Period)
	if f > 1 {
		f = 1
	}
	return f
}

// Config configures an Encounter.
type Config struct {
	RNG    random.Source
	Hooks  *hook.HookCenter
	Logger *zap.Logger
	// BlockReduction scales blocked damage. Zero means 0.5.
	BlockReduction float64
}

// Encounter is the combat state machine:
// NoEncounter → Active → (Victory | Defeat) → Respawning → NoEncounter.
type Encounter struct {
	state State
	enemy *world.Enemy

	playerTimer  Timer
	enemyTimer   Timer
	respawnTimer Timer
	tookDamage   bool

	rng            random.Source
	hooks          *hook.HookCenter
	logger         *zap.Logger
	blockReduction float64
}

// NewEncounter creates an idle encounter.
func NewEncounter(cfg Config) *Encounter {
	if cfg.RNG == nil {
		cfg.RNG = random.New(0)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BlockReduction <= 0 {
		cfg.BlockReduction = 0.5
	}
	return &Encounter{
		rng:            cfg.RNG,
		hooks:          cfg.Hooks,
		logger:         cfg.Logger,
		blockReduction: cfg.BlockReduction,
	}
}

func (e *Encounter) State() State { return e.state }
func (e *Encounter) Enemy() *world.Enemy { return e.enemy }
func (e *Encounter) PlayerTimer() Timer { return e.playerTimer }
func (e *Encounter) EnemyTimer() Timer { return e.enemyTimer }
func (e *Encounter) RespawnTimer() Timer { return e.respawnTimer }
func (e *Encounter) InCombat() bool { return e.state == Active }
func (e *Encounter) TookDamage() bool { return e.tookDamage }

// Start engages enemy. Both attack timers restart from zero.
func (e *Encounter) Start(ctx context.Context, enemy *world.Enemy, playerInterval int) []Event {
	e.enemy = enemy
	e.state = Active
	e.tookDamage = false
	e.playerTimer.reset(ms(playerInterval))
	e.enemyTimer.reset(ms(enemy.AttackInterval))
	e.respawnTimer = Timer{}

	e.trigger(ctx, hook.OnEnemySpawn, enemy)
	snap := Snapshot(enemy)
	if enemy.IsBoss {
		return []Event{EventBossWarning{Boss: enemy.Name}, EventSpawn{Enemy: snap}}
	}
	return []Event{EventSpawn{Enemy: snap}}
}

// Advance moves the encounter forward by dt. In Active both accumulators
// advance; a side whose accumulator reached its period attacks once and
// restarts from zero without carrying the remainder. The player attacks
// first, and a killed enemy does not strike back in the same step.
func (e *Encounter) Advance(ctx context.Context, dt time.Duration, c *player.Character, st player.Stats) []Event {
	switch e.state {
	case Respawning:
		e.respawnTimer.Elapsed += dt
		if e.respawnTimer.Ready() {
			e.state = NoEncounter
			e.respawnTimer = Timer{}
			return []Event{EventRespawnReady{}}
		}
		return nil
	case Active:
	default:
		return nil
	}

	var events []Event
	e.playerTimer.Period = ms(st.AttackInterval)
	e.playerTimer.Elapsed += dt
	e.enemyTimer.Elapsed += dt

	if e.playerTimer.Ready() {
		e.playerTimer.Elapsed = 0
		events = append(events, e.playerAttack(ctx, c, st))
		if e.enemy.IsDead() {
			e.state = Victory
			e.logger.Debug("enemy defeated", zap.String("enemy", e.enemy.Name), zap.Bool("boss", e.enemy.IsBoss))
			return append(events, EventVictory{Enemy: e.enemy.Name, Boss: e.enemy.IsBoss})
		}
	}

	if e.enemyTimer.Ready() {
		e.enemyTimer.Elapsed = 0
		events = append(events, e.enemyAttack(ctx, c, st))
		if c.IsDead() {
			e.state = Defeat
			e.logger.Info("player defeated", zap.String("enemy", e.enemy.Name), zap.Int("level", c.Level))
			events = append(events, EventDefeat{Enemy: e.enemy.Name})
		}
	}
	return events
}

func (e *Encounter) playerAttack(ctx context.Context, c *player.Character, st player.Stats) Event {
	r := PlayerStrike(st, e.rng)
	r.Attacker, r.Defender = "player", e.enemy.Name
	r = e.adjust(ctx, hook.AfterPlayerDamageCalc, r)

	e.enemy.TakeDamage(r.Damage)
	healed := 0
	if h := LifeStealHeal(r.Damage, st.LifeSteal); h > 0 && c.HP < st.MaxHP {
		before := c.HP
		c.Heal(h, st.MaxHP)
		healed = c.HP - before
	}
	return EventPlayerAttack{
		Enemy:    e.enemy.Name,
		Damage:   r.Damage,
		Critical: r.Critical,
		Healed:   healed,
		EnemyHP:  e.enemy.HP,
	}
}

func (e *Encounter) enemyAttack(ctx context.Context, c *player.Character, st player.Stats) Event {
	r := EnemyStrike(e.enemy.Attack, st, e.blockReduction, e.rng)
	r.Attacker, r.Defender = e.enemy.Name, "player"
	if !r.Dodged {
		r = e.adjust(ctx, hook.AfterEnemyDamageCalc, r)
	}
	if r.Damage > 0 {
		c.TakeDamage(r.Damage)
		e.tookDamage = true
	}
	return EventEnemyAttack{
		Enemy:    e.enemy.Name,
		Damage:   r.Damage,
		Dodged:   r.Dodged,
		Blocked:  r.Blocked,
		PlayerHP: c.HP,
	}
}

// BeginRespawn clears the defeated enemy and waits d before the next spawn.
func (e *Encounter) BeginRespawn(d time.Duration) {
	e.enemy = nil
	e.state = Respawning
	e.playerTimer.Elapsed = 0
	e.enemyTimer.Elapsed = 0
	e.respawnTimer.reset(d)
}

// Halt stops combat after a defeat. The encounter stays in Defeat until
// Clear is called.
func (e *Encounter) Halt() {
	e.state = Defeat
	e.enemy = nil
	e.playerTimer = Timer{}
	e.enemyTimer = Timer{}
}

// Clear drops any enemy and timers and returns to NoEncounter.
func (e *Encounter) Clear() {
	e.enemy = nil
	e.state = NoEncounter
	e.playerTimer = Timer{}
	e.enemyTimer = Timer{}
	e.respawnTimer = Timer{}
	e.tookDamage = false
}

func (e *Encounter) adjust(ctx context.Context, event string, r DamageResult) DamageResult {
	if e.hooks == nil || !e.hooks.Has(event) {
		return r
	}
	out, err := e.hooks.Trigger(ctx, event, &r)
	if err != nil {
		e.logger.Debug("damage hook interrupted", zap.String("event", event), zap.Error(err))
	}
	if p, ok := out.(*DamageResult); ok && p != nil {
		r = *p
	}
	if r.Damage < 0 {
		r.Damage = 0
	}
	return r
}

func (e *Encounter) trigger(ctx context.Context, event string, data any) {
	if e.hooks == nil {
		return
	}
	if _, err := e.hooks.Trigger(ctx, event, data); err != nil {
		e.logger.Debug("hook interrupted", zap.String("event", event), zap.Error(err))
	}
}

// Snapshot returns the presentation view of enemy.
func Snapshot(enemy *world.Enemy) EnemySnapshot {
	if enemy == nil {
		return EnemySnapshot{}
	}
	return EnemySnapshot{
		Name:           enemy.Name,
		HP:             enemy.HP,
		MaxHP:          enemy.MaxHP,
		Attack:         enemy.Attack,
		AttackInterval: enemy.AttackInterval,
		IsBoss:         enemy.IsBoss,
	}
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
