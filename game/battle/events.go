package battle

// Event is emitted by Encounter for the driver and presentation layer.
type Event interface {
	EventType() string
}

// EnemySnapshot is the presentation view of the live enemy.
type EnemySnapshot struct {
	Name           string `json:"name"`
	HP             int    `json:"hp"`
	MaxHP          int    `json:"maxHp"`
	Attack         int    `json:"attack"`
	AttackInterval int    `json:"attackInterval"`
	IsBoss         bool   `json:"isBoss"`
}

type EventSpawn struct {
	Enemy EnemySnapshot `json:"enemy"`
}

func (EventSpawn) EventType() string { return "spawn" }

// EventBossWarning precedes the spawn of a zone boss.
type EventBossWarning struct {
	Boss string `json:"boss"`
}

func (EventBossWarning) EventType() string { return "boss_warning" }

type EventPlayerAttack struct {
	Enemy    string `json:"enemy"`
	Damage   int    `json:"damage"`
	Critical bool   `json:"critical"`
	Healed   int    `json:"healed,omitempty"`
	EnemyHP  int    `json:"enemyHp"`
}

func (EventPlayerAttack) EventType() string { return "player_attack" }

type EventEnemyAttack struct {
	Enemy    string `json:"enemy"`
	Damage   int    `json:"damage"`
	Dodged   bool   `json:"dodged"`
	Blocked  bool   `json:"blocked"`
	PlayerHP int    `json:"playerHp"`
}

func (EventEnemyAttack) EventType() string { return "enemy_attack" }

type EventVictory struct {
	Enemy string `json:"enemy"`
	Boss  bool   `json:"boss"`
}

func (EventVictory) EventType() string { return "victory" }

type EventDefeat struct {
	Enemy string `json:"enemy"`
}

func (EventDefeat) EventType() string { return "defeat" }

// EventRespawnReady fires when the respawn delay has elapsed.
type EventRespawnReady struct{}

func (EventRespawnReady) EventType() string { return "respawn_ready" }
