package world

import "github.com/kasuganosora/idlerpg/resource"

// Enemy is the single live opponent of an encounter. InstID is assigned by
// the Spawner that created it and is zero otherwise.
type Enemy struct {
	InstID         int64           `json:"instId"`
	Name           string          `json:"name"`
	HP             int             `json:"hp"`
	MaxHP          int             `json:"maxHp"`
	Attack         int             `json:"attack"`
	AttackInterval int             `json:"attackInterval"`
	XP             int             `json:"xp"`
	Gold           int             `json:"gold"`
	IsBoss         bool            `json:"isBoss"`
	GuaranteedDrop resource.Rarity `json:"guaranteedDrop,omitempty"`
}

// NewEnemy instantiates a regular enemy at full health.
func NewEnemy(def resource.EnemyDef) *Enemy {
	return &Enemy{
		Name:           def.Name,
		HP:             def.HP,
		MaxHP:          def.HP,
		Attack:         def.Attack,
		AttackInterval: def.AttackInterval,
		XP:             def.XP,
		Gold:           def.Gold,
	}
}

// NewBoss instantiates a zone boss.
func NewBoss(def *resource.BossDef) *Enemy {
	e := NewEnemy(def.EnemyDef)
	e.IsBoss = true
	e.GuaranteedDrop = def.GuaranteedDrop
	return e
}

// TakeDamage subtracts amount and clamps HP at zero.
func (e *Enemy) TakeDamage(amount int) {
	if amount <= 0 {
		return
	}
	e.HP -= amount
	if e.HP < 0 {
		e.HP = 0
	}
}

// IsDead reports whether the enemy has been defeated.
func (e *Enemy) IsDead() bool { return e.HP <= 0 }
