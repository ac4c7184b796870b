package session

import (
	"context"
	"testing"

	"github.com/kasuganosora/idlerpg/model"
	"github.com/kasuganosora/idlerpg/resource"
	"github.com/kasuganosora/idlerpg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSave_RoundTripCacheStore(t *testing.T) {
	c, _ := testutil.SetupTestCache(t)
	store := NewCacheStore(c)
	ctx := context.Background()

	g, _ := newTestGame(t)
	require.NoError(t, g.GiveGold(500))
	require.NoError(t, g.ChangeZone("forest"))
	g.Character().AddItem(testItem("Cap", resource.SlotHelmet, ""))
	g.EndRun(ctx)
	ok, err := g.Allocate(ctx, "power", "power_1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, g.Save(ctx, store, ""))

	loaded, _ := newTestGame(t)
	require.NoError(t, loaded.Load(ctx, store, DefaultSaveKey))
	assert.Equal(t, 460, loaded.Character().Gold)
	assert.Equal(t, "forest", loaded.Zones().CurrentID())
	assert.Equal(t, 1, loaded.Tree().Level("power", "power_1"))
	require.Len(t, loaded.Character().Inventory, 1)
	assert.Equal(t, "Cap", loaded.Character().Inventory[0].ID)
	assert.True(t, loaded.IsDead(), "a run saved after death loads as dead")
	assert.NotNil(t, loaded.Death())
}

func TestLoad_MissingSave(t *testing.T) {
	c, _ := testutil.SetupTestCache(t)
	g, _ := newTestGame(t)
	err := g.Load(context.Background(), NewCacheStore(c), "nothing-here")
	assert.ErrorIs(t, err, ErrNoSave)
}

func TestLoad_BackfillsOldSave(t *testing.T) {
	c, _ := testutil.SetupTestCache(t)
	store := NewCacheStore(c)
	ctx := context.Background()
	raw := `{"player":{"level":3,"hp":40,"gold":7,"equipment":{"weapon":{"name":"Stick","attack":3}},
		"inventory":[{"name":"Cap","type":"helmet","rarity":"common"}]}}`
	require.NoError(t, store.Save(ctx, DefaultSaveKey, raw))

	g, _ := newTestGame(t)
	require.NoError(t, g.Load(ctx, store, ""))

	ch := g.Character()
	assert.Equal(t, 3, ch.Level)
	assert.Equal(t, testRes.Rules.BaseHP, ch.BaseHP)
	assert.Equal(t, testRes.Rules.BaseAttack, ch.BaseAttack)
	w := ch.Equipment[resource.SlotWeapon]
	require.NotNil(t, w)
	assert.Equal(t, resource.SlotWeapon, w.Type)
	assert.Equal(t, "Stick", w.FullName)
	assert.NotNil(t, w.Prefixes)
	assert.NotNil(t, w.Suffixes)
	assert.NotEmpty(t, ch.Inventory[0].ID)

	assert.Equal(t, "basement", g.Zones().CurrentID())
	assert.ElementsMatch(t, testRes.Rules.StartingZones, g.Zones().Unlocked())
	assert.False(t, g.IsDead())
}

func TestLoad_SaveWithoutHPStartsAtFullHealth(t *testing.T) {
	c, _ := testutil.SetupTestCache(t)
	store := NewCacheStore(c)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, DefaultSaveKey, `{"player":{"level":2,"gold":5}}`))

	g, _ := newTestGame(t)
	require.NoError(t, g.Load(ctx, store, ""))
	assert.False(t, g.IsDead())
	assert.Nil(t, g.Death())
	assert.Equal(t, g.Stats().MaxHP, g.Character().HP)
}

func TestLoad_Malformed(t *testing.T) {
	c, _ := testutil.SetupTestCache(t)
	store := NewCacheStore(c)
	require.NoError(t, store.Save(context.Background(), DefaultSaveKey, "{not json"))

	g, _ := newTestGame(t)
	assert.Error(t, g.Load(context.Background(), store, ""))
	assert.Equal(t, 1, g.Character().Level, "a failed load leaves the game untouched")
}

func TestDBStore_UpsertAndSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := NewDBStore(db)
	ctx := context.Background()

	_, err := store.Load(ctx, DefaultSaveKey)
	assert.ErrorIs(t, err, ErrNoSave)

	g, _ := newTestGame(t)
	require.NoError(t, g.GiveGold(30))
	require.NoError(t, g.Save(ctx, store, ""))
	require.NoError(t, g.GiveGold(70))
	require.NoError(t, g.Save(ctx, store, ""))

	var slots []model.SaveSlot
	require.NoError(t, db.Find(&slots).Error)
	require.Len(t, slots, 1)
	assert.Equal(t, 100, slots[0].Gold)
	assert.Equal(t, 1, slots[0].Level)

	loaded, _ := newTestGame(t)
	require.NoError(t, loaded.Load(ctx, store, ""))
	assert.Equal(t, 100, loaded.Character().Gold)
}
