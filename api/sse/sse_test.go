package sse_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kasuganosora/idlerpg/api/sse"
	"github.com/kasuganosora/idlerpg/game/session"
	"github.com/kasuganosora/idlerpg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func entryJSON(t *testing.T, e session.LogEntry) string {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return string(b)
}

// readEvent returns the next non-comment event block.
func readEvent(t *testing.T, sc *bufio.Scanner) []string {
	t.Helper()
	var block []string
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if len(block) > 0 {
				return block
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		block = append(block, line)
	}
	require.NoError(t, sc.Err())
	require.NotEmpty(t, block, "stream ended")
	return block
}

func TestServeSSE_ReplaysBacklogThenStreamsLive(t *testing.T) {
	c, ps := testutil.SetupTestCache(t)
	ctx := context.Background()

	ts0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	old := session.LogEntry{Seq: 1, Time: ts0, Category: session.CategoryCombat, Message: "A wild Giant Rat appears!"}
	require.NoError(t, c.LPush(ctx, session.BacklogKey, entryJSON(t, old)))

	h := sse.NewHandler(ps, c, 10, testutil.Logger(t))
	r := gin.New()
	r.GET("/sse", h.ServeSSE)
	srv := httptest.NewServer(r)
	defer srv.Close()

	reqCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	assert.Equal(t, []string{"event: connected", "data: {}"}, readEvent(t, sc))

	replay := readEvent(t, sc)
	require.Len(t, replay, 3)
	assert.Equal(t, "id: 1", replay[0])
	assert.Equal(t, "event: log", replay[1])
	assert.Contains(t, replay[2], "Giant Rat")

	// The replayed entry arriving again live is suppressed.
	require.NoError(t, ps.Publish(ctx, session.EventsChannel, entryJSON(t, old)))
	live := session.LogEntry{Seq: 2, Time: ts0.Add(time.Second), Category: session.CategoryLoot, Message: "Found Rusty Sword!"}
	require.NoError(t, ps.Publish(ctx, session.EventsChannel, entryJSON(t, live)))

	next := readEvent(t, sc)
	require.Len(t, next, 3)
	assert.Equal(t, "id: 2", next[0])
	assert.Contains(t, next[2], "Rusty Sword")
}

func TestServeSSE_EmptyBacklog(t *testing.T) {
	c, ps := testutil.SetupTestCache(t)
	h := sse.NewHandler(ps, c, 0, nil)
	r := gin.New()
	r.GET("/sse", h.ServeSSE)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	sc := bufio.NewScanner(resp.Body)
	assert.Equal(t, []string{"event: connected", "data: {}"}, readEvent(t, sc))

	require.NoError(t, ps.Publish(ctx, session.EventsChannel, `{"seq":7,"category":"system","message":"Game loaded."}`))
	ev := readEvent(t, sc)
	assert.Equal(t, "id: 7", ev[0])
	assert.Contains(t, ev[2], "Game loaded.")
}
