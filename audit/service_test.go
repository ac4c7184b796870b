package audit

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/idlerpg/model"
	"github.com/kasuganosora/idlerpg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_StartsWorker(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nil)
	require.NotNil(t, svc)
	svc.Stop(context.Background())
}

func TestRecordRun_FlushedOnStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, testutil.Logger(t))

	svc.RecordRun(RunEntry{
		TraceID:      "trace-123",
		Ascension:    2,
		LevelReached: 14,
		StartLevel:   1,
		Gold:         5120,
		Kills:        230,
		TalentPoints: 7,
		Zone:         "mountain",
		KilledBy:     "Stone Giant",
		Talents:      map[string]map[string]int{"power": {"power_1": 3}},
	})
	svc.Stop(context.Background())

	var runs []model.RunRecord
	require.NoError(t, db.Find(&runs).Error)
	require.Len(t, runs, 1)
	assert.Equal(t, "trace-123", runs[0].TraceID)
	assert.Equal(t, 14, runs[0].LevelReached)
	assert.Equal(t, "Stone Giant", runs[0].KilledBy)
	assert.JSONEq(t, `{"power":{"power_1":3}}`, string(runs[0].Talents))
}

func TestRecordRun_BatchFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nil)

	for i := 1; i <= batchSize+5; i++ {
		svc.RecordRun(RunEntry{Ascension: i})
	}
	svc.Stop(context.Background())

	var count int64
	db.Model(&model.RunRecord{}).Count(&count)
	assert.Equal(t, int64(batchSize+5), count)
}

func TestRecordRun_TimerFlush(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nil)
	defer svc.Stop(context.Background())

	svc.RecordRun(RunEntry{Ascension: 1})
	assert.Eventually(t, func() bool {
		var count int64
		db.Model(&model.RunRecord{}).Count(&count)
		return count == 1
	}, flushInterval+time.Second, 50*time.Millisecond)
}

func TestRecent_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nil)
	for i := 1; i <= 3; i++ {
		svc.RecordRun(RunEntry{Ascension: i})
	}
	svc.Stop(context.Background())

	runs, err := svc.Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].Ascension)
	assert.Equal(t, 2, runs[1].Ascension)
}

func TestStop_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nil)
	svc.Stop(context.Background())
	svc.Stop(context.Background())
}

func TestRecordRun_DropsWhenFull(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := New(db, nil)
	for i := 0; i < queueSize*2; i++ {
		svc.RecordRun(RunEntry{Ascension: i})
	}
	svc.Stop(context.Background())
}
