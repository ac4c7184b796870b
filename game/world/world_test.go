package world

import (
	"testing"

	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRes = resource.MustLoadDefault()

// ---- Zones ----

func TestNewZones_StartingSubset(t *testing.T) {
	z := NewZones(testRes)
	assert.Equal(t, "basement", z.CurrentID())
	assert.Equal(t, []string{"restArea", "basement", "forest"}, z.Unlocked())
	assert.False(t, z.IsUnlocked("cave"))
}

func TestCheckUnlocks_Monotonic(t *testing.T) {
	z := NewZones(testRes)
	added := z.CheckUnlocks(5)
	require.Len(t, added, 1)
	assert.Equal(t, "cave", added[0].ID)
	assert.Empty(t, z.CheckUnlocks(5))

	added = z.CheckUnlocks(12)
	assert.Len(t, added, 2)
	// a lower level never relocks anything
	z.CheckUnlocks(1)
	assert.Len(t, z.Unlocked(), 6)
}

func TestMove(t *testing.T) {
	z := NewZones(testRes)
	assert.ErrorIs(t, z.Move("nowhere"), ErrUnknownZone)
	assert.ErrorIs(t, z.Move("cave"), ErrZoneLocked)
	assert.Equal(t, "basement", z.CurrentID())

	z.RecordKill("forest")
	require.NoError(t, z.Move("forest"))
	assert.Equal(t, "forest", z.CurrentID())
	assert.Equal(t, 0, z.Kills("forest"))
}

func TestBossGating_EveryExactMultiple(t *testing.T) {
	z := NewZones(testRes)
	z.CheckUnlocks(8)
	require.NoError(t, z.Move("goblinCave"))

	for i := 1; i < 15; i++ {
		z.RecordKill("goblinCave")
		assert.False(t, z.BossDue("goblinCave"), "kill %d", i)
	}
	z.RecordKill("goblinCave")
	assert.True(t, z.BossDue("goblinCave"))

	z.RecordBossKill("goblinCave")
	assert.False(t, z.BossDue("goblinCave"))
	assert.Equal(t, 15, z.Kills("goblinCave"))

	for i := 16; i < 30; i++ {
		z.RecordKill("goblinCave")
		assert.False(t, z.BossDue("goblinCave"), "kill %d", i)
	}
	z.RecordKill("goblinCave")
	assert.True(t, z.BossDue("goblinCave"))
}

func TestBossDue_ZoneWithoutBoss(t *testing.T) {
	z := NewZones(testRes)
	for i := 0; i < 15; i++ {
		z.RecordKill("forest")
	}
	assert.False(t, z.BossDue("forest"))
}

func TestSnapshotRestore(t *testing.T) {
	z := NewZones(testRes)
	z.CheckUnlocks(8)
	require.NoError(t, z.Move("goblinCave"))
	for i := 0; i < 15; i++ {
		z.RecordKill("goblinCave")
	}
	z.RecordBossKill("goblinCave")
	s := z.Snapshot()

	z2 := NewZones(testRes)
	z2.Restore(s)
	assert.Equal(t, "goblinCave", z2.CurrentID())
	assert.Equal(t, z.Unlocked(), z2.Unlocked())
	assert.Equal(t, 15, z2.Kills("goblinCave"))
	assert.False(t, z2.BossDue("goblinCave"))
}

func TestRestore_Backfills(t *testing.T) {
	z := NewZones(testRes)
	z.Restore(State{Unlocked: []string{"bogus"}, Current: "bogus"})
	assert.Equal(t, "basement", z.CurrentID())
	assert.Equal(t, []string{"basement"}, z.Unlocked())

	z.Restore(State{})
	assert.Equal(t, []string{"restArea", "basement", "forest"}, z.Unlocked())
}

// ---- Spawner ----

func TestSpawner_RestZoneNoop(t *testing.T) {
	z := NewZones(testRes)
	require.NoError(t, z.Move("restArea"))
	sp := NewSpawner(z, random.Fixed(0), nil)
	assert.Nil(t, sp.Spawn())
}

func TestSpawner_UniformPick(t *testing.T) {
	z := NewZones(testRes)
	sp := NewSpawner(z, random.NewSequence(0, 0.5, 0.99), nil)
	assert.Equal(t, "Sewer Rat", sp.Spawn().Name)
	assert.Equal(t, "Giant Rat", sp.Spawn().Name)
	e := sp.Spawn()
	assert.Equal(t, "Diseased Rat", e.Name)
	assert.Equal(t, e.MaxHP, e.HP)
	assert.False(t, e.IsBoss)
}

func TestSpawner_Boss(t *testing.T) {
	z := NewZones(testRes)
	z.CheckUnlocks(8)
	require.NoError(t, z.Move("goblinCave"))
	for i := 0; i < 15; i++ {
		z.RecordKill("goblinCave")
	}
	e := NewSpawner(z, random.Fixed(0), nil).Spawn()
	require.NotNil(t, e)
	assert.True(t, e.IsBoss)
	assert.Equal(t, "Goblin King", e.Name)
	assert.Equal(t, resource.Epic, e.GuaranteedDrop)
	assert.Equal(t, 400, e.HP)
}

func TestSpawner_InstanceIDsPerSpawner(t *testing.T) {
	z := NewZones(testRes)
	sp := NewSpawner(z, random.Fixed(0.5), nil)
	assert.EqualValues(t, 1, sp.Spawn().InstID)
	assert.EqualValues(t, 2, sp.Spawn().InstID)

	other := NewSpawner(z, random.Fixed(0.5), nil)
	assert.EqualValues(t, 1, other.Spawn().InstID)
	assert.Zero(t, NewEnemy(resource.EnemyDef{Name: "Slime", HP: 1}).InstID)
}

func TestEnemy_DamageClampsAtZero(t *testing.T) {
	e := NewEnemy(resource.EnemyDef{Name: "Slime", HP: 10})
	e.TakeDamage(25)
	assert.Equal(t, 0, e.HP)
	assert.True(t, e.IsDead())
	e.TakeDamage(-5)
	assert.Equal(t, 0, e.HP)
}

func TestIsCombatZone(t *testing.T) {
	assert.False(t, IsCombatZone(testRes.Zone("restArea")))
	assert.True(t, IsCombatZone(testRes.Zone("forest")))
	assert.False(t, IsCombatZone(nil))
}
