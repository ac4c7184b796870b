package integration

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/idlerpg/api/rest"
	"github.com/kasuganosora/idlerpg/api/sse"
	"github.com/kasuganosora/idlerpg/api/ws"
	"github.com/kasuganosora/idlerpg/audit"
	"github.com/kasuganosora/idlerpg/cache"
	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/game/session"
	mw "github.com/kasuganosora/idlerpg/middleware"
	"github.com/kasuganosora/idlerpg/plugin/hook"
	"github.com/kasuganosora/idlerpg/resource"
	"github.com/kasuganosora/idlerpg/scheduler"
	"github.com/kasuganosora/idlerpg/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// AdminKey is the admin key every test server accepts.
const AdminKey = "integration-admin"

const saveKey = "integration_save"

var catalog = resource.MustLoadDefault()

// TestServer wraps a real HTTP server with the game and its services wired
// together the way main.go does.
type TestServer struct {
	DB     *gorm.DB
	Cache  cache.Cache
	PubSub cache.PubSub
	Hooks  *hook.HookCenter
	Audit  *audit.Service
	Store  session.Store
	Server *httptest.Server
	URL    string

	cancel context.CancelFunc
	done   chan error
}

// NewTestServer creates a fully wired server. A nil db gets a fresh
// in-memory database; passing one in lets two servers share saves.
func NewTestServer(t *testing.T, db *gorm.DB) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	// ---- Infrastructure ----
	if db == nil {
		db = testutil.SetupTestDB(t)
	}
	c, pubsub := testutil.SetupTestCache(t)
	logger := zap.NewNop()

	auditSvc := audit.New(db, logger)
	publisher := session.NewEventPublisher(pubsub, c, 100, logger)
	hooks := hook.NewHookCenter()

	// ---- Game ----
	game := session.New(session.Options{
		Resources: catalog,
		RNG:       random.Fixed(0.5),
		Hooks:     hooks,
		Logger:    logger,
		Publisher: publisher,
		Recorder:  auditSvc,
	})
	store := session.NewDBStore(db)
	if err := game.Load(context.Background(), store, saveKey); err != nil {
		require.ErrorIs(t, err, session.ErrNoSave)
	}
	runner := session.NewRunner(game, 20*time.Millisecond, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	sched := scheduler.New(logger)
	sched.AddTicker("autosave", time.Hour, func(ctx context.Context) {
		_ = runner.Do(ctx, func(g *session.Game) error { return g.Save(ctx, store, saveKey) })
	})

	// ---- Gin HTTP Server ----
	r := gin.New()
	r.Use(mw.TraceID(), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(1000), 2000))

	apirest.Mount(r,
		apirest.NewGameHandler(runner, store, saveKey, logger),
		apirest.NewAdminHandler(runner, auditSvc, sched, logger),
		apirest.AdminAuth(AdminKey),
	)
	r.GET("/sse", sse.NewHandler(pubsub, c, 100, logger).ServeSSE)
	wsRouter := ws.NewRouter(ws.PublicError, logger)
	ws.RegisterGameHandlers(wsRouter, runner)
	r.GET("/ws", ws.NewHandler(pubsub, wsRouter, nil, logger).ServeWS)

	server := httptest.NewServer(r)
	ts := &TestServer{
		DB:     db,
		Cache:  c,
		PubSub: pubsub,
		Hooks:  hooks,
		Audit:  auditSvc,
		Store:  store,
		Server: server,
		URL:    server.URL,
		cancel: cancel,
		done:   done,
	}
	t.Cleanup(func() {
		ts.Close()
		sched.Stop()
		publisher.Stop()
		auditSvc.Stop(context.Background())
	})
	return ts
}

// Close stops the HTTP server and the simulation. It is safe to call twice.
func (ts *TestServer) Close() {
	ts.Server.CloseClientConnections()
	ts.Server.Close()
	if ts.cancel != nil {
		ts.cancel()
		<-ts.done
		ts.cancel = nil
	}
}

// Call sends a JSON request and decodes the JSON response body.
func (ts *TestServer) Call(t *testing.T, method, path string, body any, headers ...string) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// Admin is Call with the admin key header set.
func (ts *TestServer) Admin(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	return ts.Call(t, method, path, body, "X-Admin-Key", AdminKey)
}

// Snapshot fetches GET /api/game.
func (ts *TestServer) Snapshot(t *testing.T) session.View {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/game")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var v session.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

// Stream is an open /sse connection.
type Stream struct {
	resp   *http.Response
	lines  chan string
	cancel context.CancelFunc
}

// OpenStream connects to /sse and waits for the connected event.
func (ts *TestServer) OpenStream(t *testing.T) *Stream {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/sse", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	s := &Stream{resp: resp, lines: make(chan string, 256), cancel: cancel}
	go func() {
		defer close(s.lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			s.lines <- sc.Text()
		}
	}()
	t.Cleanup(s.Close)
	require.True(t, s.WaitFor("event: connected", 5*time.Second), "no connected event")
	return s
}

// WaitFor reads lines until one contains substr or the timeout passes.
func (s *Stream) WaitFor(substr string, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				return false
			}
			if strings.Contains(line, substr) {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

// Close ends the stream.
func (s *Stream) Close() {
	s.cancel()
	_ = s.resp.Body.Close()
}
