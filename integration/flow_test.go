package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kasuganosora/idlerpg/api/ws"

	"github.com/kasuganosora/idlerpg/game/session"
	"github.com/kasuganosora/idlerpg/model"
	"github.com/kasuganosora/idlerpg/plugin/hook"
	"github.com/kasuganosora/idlerpg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	ts := NewTestServer(t, nil)
	code, body := ts.Call(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
}

func TestSimulationSpawnsEnemy(t *testing.T) {
	ts := NewTestServer(t, nil)

	assert.Eventually(t, func() bool {
		v := ts.Snapshot(t)
		return v.Enemy != nil && v.Enemy.Name == "Giant Rat"
	}, 5*time.Second, 50*time.Millisecond, "basement should spawn a rat")
}

func TestStreamCarriesCommandLogs(t *testing.T) {
	ts := NewTestServer(t, nil)
	stream := ts.OpenStream(t)

	code, _ := ts.Admin(t, http.MethodPost, "/api/admin/gold", map[string]int{"amount": 42})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, stream.WaitFor("Admin: Gave 42 gold", 5*time.Second))

	code, _ = ts.Call(t, http.MethodPost, "/api/game/zone", map[string]string{"zone": "restArea"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, stream.WaitFor("Rest Area", 5*time.Second))
}

func TestLateStreamReplaysBacklog(t *testing.T) {
	ts := NewTestServer(t, nil)
	code, _ := ts.Admin(t, http.MethodPost, "/api/admin/guaranteed-drops", map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, code)

	// The publisher writes the backlog asynchronously.
	require.Eventually(t, func() bool {
		entries, err := session.Backlog(context.Background(), ts.Cache, 10)
		if err != nil {
			return false
		}
		for _, e := range entries {
			if e.Message == "Admin: Guaranteed drops enabled" {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)

	stream := ts.OpenStream(t)
	assert.True(t, stream.WaitFor("Welcome to the Idle RPG!", 5*time.Second))
}

// TestFullRunCycle drives one complete run over HTTP: end the run, buy a
// talent with the gold kept, ascend and find the run in the history.
func TestFullRunCycle(t *testing.T) {
	ts := NewTestServer(t, nil)

	fired := make(chan any, 1)
	ts.Hooks.Register(hook.OnAscend, 0, "test", func(_ context.Context, _ string, data any) (any, error) {
		select {
		case fired <- data:
		default:
		}
		return data, nil
	})

	code, _ := ts.Admin(t, http.MethodPost, "/api/admin/gold", map[string]int{"amount": 500})
	require.Equal(t, http.StatusOK, code)
	code, _ = ts.Admin(t, http.MethodPost, "/api/admin/levels", map[string]int{"levels": 4})
	require.Equal(t, http.StatusOK, code)

	code, body := ts.Call(t, http.MethodPost, "/api/game/end-run", nil)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, body["death"])

	v := ts.Snapshot(t)
	require.NotNil(t, v.Death)
	assert.Equal(t, 0, v.Character.HP)

	code, body = ts.Call(t, http.MethodPost, "/api/talents/allocate", map[string]string{"pathway": "power", "node": "power_1"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["ok"])

	code, body = ts.Call(t, http.MethodPost, "/api/game/ascend", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["ascensions"])
	assert.GreaterOrEqual(t, body["levelReached"], float64(5))

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("ascend hook not fired")
	}

	v = ts.Snapshot(t)
	assert.Nil(t, v.Death)
	assert.Equal(t, 1, v.Ascensions)
	assert.Greater(t, v.Character.HP, 0)

	// The audit worker flushes on an interval.
	assert.Eventually(t, func() bool {
		code, body := ts.Admin(t, http.MethodGet, "/api/admin/runs", nil)
		return code == http.StatusOK && body["count"] == float64(1)
	}, 5*time.Second, 100*time.Millisecond)

	var rec model.RunRecord
	require.NoError(t, ts.DB.First(&rec).Error)
	assert.GreaterOrEqual(t, rec.LevelReached, 5)
	assert.NotEmpty(t, rec.TraceID, "trace id flows from the request")
}

func TestSaveSurvivesRestart(t *testing.T) {
	db := testutil.SetupTestDB(t)

	first := NewTestServer(t, db)
	code, _ := first.Admin(t, http.MethodPost, "/api/admin/gold", map[string]int{"amount": 1234})
	require.Equal(t, http.StatusOK, code)
	code, _ = first.Call(t, http.MethodPost, "/api/game/save", nil)
	require.Equal(t, http.StatusOK, code)
	first.Close()

	var row model.SaveSlot
	require.NoError(t, db.Where("save_key = ?", saveKey).First(&row).Error)
	assert.GreaterOrEqual(t, row.Gold, 1234)

	second := NewTestServer(t, db)
	v := second.Snapshot(t)
	assert.GreaterOrEqual(t, v.Character.Gold, 1234)
}

func TestAdminRoutesRequireKey(t *testing.T) {
	ts := NewTestServer(t, nil)

	code, _ := ts.Call(t, http.MethodGet, "/api/admin/scheduler", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := ts.Admin(t, http.MethodGet, "/api/admin/scheduler", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["tasks"], 1)
}

// TestWebSocketTalentPurchase buys a talent over /ws between runs and sees
// the result on the HTTP snapshot.
func TestWebSocketTalentPurchase(t *testing.T) {
	ts := NewTestServer(t, nil)
	code, _ := ts.Admin(t, http.MethodPost, "/api/admin/gold", map[string]int{"amount": 100})
	require.Equal(t, http.StatusOK, code)
	code, _ = ts.Call(t, http.MethodPost, "/api/game/end-run", nil)
	require.Equal(t, http.StatusOK, code)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	send := func(seq uint64, msgType string, payload any) {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		require.NoError(t, conn.WriteJSON(ws.Packet{Seq: seq, Type: msgType, Payload: raw}))
	}
	await := func(msgType string) ws.Packet {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
		for {
			var p ws.Packet
			require.NoError(t, conn.ReadJSON(&p))
			if p.Type == msgType {
				return p
			}
		}
	}

	await("connected")
	send(1, "allocate", map[string]string{"pathway": "power", "node": "power_1"})
	var res struct {
		OK    bool `json:"ok"`
		Level int  `json:"level"`
	}
	require.NoError(t, json.Unmarshal(await("allocate_result").Payload, &res))
	assert.True(t, res.OK)
	assert.Equal(t, 1, res.Level)

	send(2, "ascend", nil)
	await("ascend_result")
	assert.Equal(t, 1, ts.Snapshot(t).Ascensions)
}
