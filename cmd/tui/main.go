// Command tui plays the idle RPG in a terminal. The game runs in process and
// is saved to the configured database on quit.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/kasuganosora/idlerpg/config"
	dbadapter "github.com/kasuganosora/idlerpg/db"
	"github.com/kasuganosora/idlerpg/game/random"
	"github.com/kasuganosora/idlerpg/game/session"
	"github.com/kasuganosora/idlerpg/model"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// The screen owns stdout, so logs go to a file.
	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{"idlerpg-tui.log"}
	zcfg.ErrorOutputPaths = []string{"idlerpg-tui.log"}
	logger, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}
	store := session.NewDBStore(db)

	res := resource.NewLoader(cfg.Game.CatalogDir)
	if err := res.Load(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}

	g := session.New(session.Options{
		Resources:       res,
		RNG:             random.New(cfg.Game.Seed),
		Logger:          logger,
		Respawn:         time.Duration(cfg.Game.RespawnMs) * time.Millisecond,
		LogCapacity:     cfg.Game.LogCapacity,
		GuaranteedDrops: cfg.Game.GuaranteedDrops,
	})
	ctx := context.Background()
	if err := g.Load(ctx, store, cfg.Game.SaveKey); err != nil && !errors.Is(err, session.ErrNoSave) {
		logger.Warn("save load failed, starting a new game", zap.Error(err))
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}

	loopErr := loop(ctx, screen, g, cfg.Game.Tick(), time.Duration(cfg.Game.AutosaveIntervalS)*time.Second, func() error {
		return g.Save(ctx, store, cfg.Game.SaveKey)
	})
	screen.Fini()

	if err := g.Save(ctx, store, cfg.Game.SaveKey); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return loopErr
}

// loop steps the game every tick and redraws dirty regions until the
// player quits. Key events arrive from a polling goroutine, so the game is
// only touched here.
func loop(ctx context.Context, screen tcell.Screen, g *session.Game, tick, autosave time.Duration, save func() error) error {
	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	u := newUI(screen, g)
	u.redraw(g.TakeDirty(), true)

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	var saveC <-chan time.Time
	if autosave > 0 {
		saves := time.NewTicker(autosave)
		defer saves.Stop()
		saveC = saves.C
	}

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			g.Step(ctx, now.Sub(last))
			last = now
			u.redraw(g.TakeDirty(), false)

		case <-saveC:
			if err := save(); err != nil {
				u.notice = "autosave failed: " + err.Error()
			}

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventResize:
				screen.Sync()
				u.resize()
				u.redraw(g.TakeDirty(), true)
			case *tcell.EventKey:
				if u.handleKey(ctx, ev) {
					return nil
				}
				u.redraw(g.TakeDirty(), false)
			}
		}
	}
}
