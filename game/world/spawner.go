package world

import (
	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
)

// Spawner picks the next enemy for a zone.
type Spawner struct {
	zones   *Zones
	rng     random.Source
	logger  *zap.Logger
	spawned int64
}

// NewSpawner creates a Spawner over the given zone state.
func NewSpawner(zones *Zones, rng random.Source, logger *zap.Logger) *Spawner {
	if rng == nil {
		rng = random.New(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Spawner{zones: zones, rng: rng, logger: logger}
}

// Spawn returns the next enemy for the current zone. Rest zones and zones
// without an enemy pool yield nil. The boss replaces the regular pick
// whenever it is due.
func (sp *Spawner) Spawn() *Enemy {
	zone := sp.zones.Current()
	if zone == nil || zone.Rest {
		return nil
	}
	if sp.zones.BossDue(zone.ID) {
		e := sp.track(NewBoss(zone.Boss))
		sp.logger.Info("boss spawned",
			zap.String("zone", zone.ID),
			zap.String("boss", e.Name),
			zap.Int("kills", sp.zones.Kills(zone.ID)))
		return e
	}
	if len(zone.Enemies) == 0 {
		return nil
	}
	def := zone.Enemies[random.Intn(sp.rng, len(zone.Enemies))]
	e := sp.track(NewEnemy(def))
	sp.logger.Debug("enemy spawned", zap.String("zone", zone.ID), zap.String("enemy", e.Name))
	return e
}

func (sp *Spawner) track(e *Enemy) *Enemy {
	sp.spawned++
	e.InstID = sp.spawned
	return e
}

// IsCombatZone reports whether z can ever spawn an enemy.
func IsCombatZone(z *resource.Zone) bool {
	return z != nil && !z.Rest && (len(z.Enemies) > 0 || z.Boss != nil)
}
