package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/idlerpg/api/rest"
	"github.com/kasuganosora/idlerpg/api/sse"
	"github.com/kasuganosora/idlerpg/api/ws"
	"github.com/kasuganosora/idlerpg/audit"
	"github.com/kasuganosora/idlerpg/cache"
	"github.com/kasuganosora/idlerpg/config"
	dbadapter "github.com/kasuganosora/idlerpg/db"
	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/game/session"
	mw "github.com/kasuganosora/idlerpg/middleware"
	"github.com/kasuganosora/idlerpg/model"
	"github.com/kasuganosora/idlerpg/plugin/hook"
	"github.com/kasuganosora/idlerpg/resource"
	"github.com/kasuganosora/idlerpg/scheduler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Catalog ----
	res := resource.NewLoader(cfg.Game.CatalogDir)
	if err := res.Load(); err != nil {
		log.Fatalf("catalog: %v", err)
	}
	logger.Info("Catalog loaded",
		zap.Int("zones", len(res.Zones)),
		zap.Int("pathways", len(res.Pathways)),
		zap.Bool("embedded", cfg.Game.CatalogDir == ""))

	// ---- Hooks ----
	hooks := hook.NewHookCenter()
	for _, event := range []string{hook.OnZoneUnlocked, hook.OnPlayerDeath, hook.OnAscend} {
		if err := hooks.Register(event, 100, "server-log", func(_ context.Context, event string, data any) (any, error) {
			logger.Info("game event", zap.String("event", event), zap.Any("data", data))
			return data, nil
		}); err != nil {
			log.Fatalf("hooks: %v", err)
		}
	}

	// ---- Game ----
	publisher := session.NewEventPublisher(pubsub, c, cfg.Game.LogCapacity, logger)
	defer publisher.Stop()

	game := session.New(session.Options{
		Resources:       res,
		RNG:             random.New(cfg.Game.Seed),
		Hooks:           hooks,
		Logger:          logger,
		Publisher:       publisher,
		Recorder:        auditSvc,
		Respawn:         time.Duration(cfg.Game.RespawnMs) * time.Millisecond,
		LogCapacity:     cfg.Game.LogCapacity,
		GuaranteedDrops: cfg.Game.GuaranteedDrops,
	})

	var store session.Store
	switch cfg.Game.SaveStore {
	case "db":
		store = session.NewDBStore(db)
	default:
		store = session.NewCacheStore(c)
	}
	if err := game.Load(ctx, store, cfg.Game.SaveKey); err != nil {
		if errors.Is(err, session.ErrNoSave) {
			logger.Info("no save found, starting a new game", zap.String("key", cfg.Game.SaveKey))
		} else {
			logger.Warn("save load failed, starting a new game", zap.Error(err))
		}
	}

	runner := session.NewRunner(game, cfg.Game.Tick(), logger)

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()
	sched.AddTicker("autosave", time.Duration(cfg.Game.AutosaveIntervalS)*time.Second, func(ctx context.Context) {
		err := runner.Do(ctx, func(g *session.Game) error {
			return g.Save(ctx, store, cfg.Game.SaveKey)
		})
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, session.ErrRunnerStopped) {
			logger.Warn("autosave failed", zap.Error(err))
		}
	})

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger, "/sse", "/ws", "/api/game", "/health"), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	gameH := apirest.NewGameHandler(runner, store, cfg.Game.SaveKey, logger)
	adminH := apirest.NewAdminHandler(runner, auditSvc, sched, logger)
	apirest.Mount(r, gameH, adminH,
		mw.IPWhitelist(cfg.Security.AdminIPs),
		apirest.AdminAuth(cfg.Server.AdminKey),
	)

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, c, cfg.Game.LogCapacity, logger)
	r.GET("/sse", sseH.ServeSSE)

	// ---- WebSocket ----
	wsRouter := ws.NewRouter(ws.PublicError, logger)
	ws.RegisterGameHandlers(wsRouter, runner)
	r.GET("/ws", ws.NewHandler(pubsub, wsRouter, cfg.Security.AllowedOrigins, logger).ServeWS)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// Streaming requests end with the process instead of holding up Shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return runner.Run(egCtx)
	})
	eg.Go(func() error {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		logger.Error("shutdown with error", zap.Error(err))
	}

	// The runner has exited, so the game is no longer shared.
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := game.Save(saveCtx, store, cfg.Game.SaveKey); err != nil {
		logger.Error("final save failed", zap.Error(err))
	} else {
		logger.Info("game saved", zap.String("key", cfg.Game.SaveKey))
	}
}
