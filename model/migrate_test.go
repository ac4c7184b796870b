package model_test

import (
	"testing"

	"github.com/kasuganosora/idlerpg/model"
	"github.com/kasuganosora/idlerpg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

func TestAutoMigrate_SaveSlotUpsert(t *testing.T) {
	db := testutil.SetupTestDB(t)

	slot := &model.SaveSlot{SaveKey: "idleRPG_save", Data: datatypes.JSON(`{"player":{"level":3}}`), Level: 3}
	require.NoError(t, db.Create(slot).Error)

	slot.Data = datatypes.JSON(`{"player":{"level":4}}`)
	slot.Level = 4
	require.NoError(t, db.Clauses(clause.OnConflict{UpdateAll: true}).Create(slot).Error)

	var found model.SaveSlot
	require.NoError(t, db.First(&found, "save_key = ?", "idleRPG_save").Error)
	assert.Equal(t, 4, found.Level)
	assert.JSONEq(t, `{"player":{"level":4}}`, string(found.Data))

	var count int64
	db.Model(&model.SaveSlot{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestAutoMigrate_RunRecord(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rec := &model.RunRecord{Ascension: 1, LevelReached: 12, Gold: 900, Zone: "cave", Talents: datatypes.JSON(`{}`)}
	require.NoError(t, db.Create(rec).Error)
	assert.Greater(t, rec.ID, int64(0))
	assert.False(t, rec.CreatedAt.IsZero())
}
