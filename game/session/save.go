package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kasuganosora/idlerpg/cache"
	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/talent"
	"github.com/kasuganosora/idlerpg/game/world"
	"github.com/kasuganosora/idlerpg/model"
	"github.com/kasuganosora/idlerpg/resource"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultSaveKey is the key a save is stored under unless configured.
const DefaultSaveKey = "idleRPG_save"

// SaveData is the persisted form of a game.
type SaveData struct {
	Player *player.Character `json:"player"`
	world.State
	Talents    talent.Allocations `json:"talents,omitempty"`
	Ascensions int                `json:"ascensionCount"`
	AutoSell   *player.AutoSell   `json:"autoSell,omitempty"`
	GoldStreak int                `json:"goldStreak,omitempty"`
	RunKills   int                `json:"runKills,omitempty"`
}

// Store is a string key-value store for save data. Load returns ErrNoSave
// when key holds nothing.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, data string) error
}

// ---- CacheStore ----

// CacheStore keeps saves in the cache without expiry.
type CacheStore struct {
	c cache.Cache
}

func NewCacheStore(c cache.Cache) *CacheStore {
	return &CacheStore{c: c}
}

func (s *CacheStore) Load(ctx context.Context, key string) (string, error) {
	v, err := s.c.Get(ctx, key)
	if cache.IsNotFound(err) {
		return "", ErrNoSave
	}
	if err != nil {
		return "", fmt.Errorf("cache store: load %s: %w", key, err)
	}
	return v, nil
}

func (s *CacheStore) Save(ctx context.Context, key, data string) error {
	if err := s.c.Set(ctx, key, data, 0); err != nil {
		return fmt.Errorf("cache store: save %s: %w", key, err)
	}
	return nil
}

// ---- DBStore ----

// DBStore keeps saves in the save_slots table, one row per key.
type DBStore struct {
	db *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db}
}

func (s *DBStore) Load(ctx context.Context, key string) (string, error) {
	var slot model.SaveSlot
	err := s.db.WithContext(ctx).Where("save_key = ?", key).First(&slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNoSave
	}
	if err != nil {
		return "", fmt.Errorf("db store: load %s: %w", key, err)
	}
	return string(slot.Data), nil
}

func (s *DBStore) Save(ctx context.Context, key, data string) error {
	slot := model.SaveSlot{SaveKey: key, Data: datatypes.JSON(data)}
	var summary struct {
		Player struct {
			Level int `json:"level"`
			Gold  int `json:"gold"`
		} `json:"player"`
		Ascensions int `json:"ascensionCount"`
	}
	if err := json.Unmarshal([]byte(data), &summary); err == nil {
		slot.Level = summary.Player.Level
		slot.Gold = summary.Player.Gold
		slot.Ascensions = summary.Ascensions
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&slot).Error
	if err != nil {
		return fmt.Errorf("db store: save %s: %w", key, err)
	}
	return nil
}

// ---- Game save/load ----

// Snapshot captures everything a save holds.
func (g *Game) Snapshot() SaveData {
	as := g.autoSell
	return SaveData{
		Player:     g.char,
		State:      g.zones.Snapshot(),
		Talents:    g.tree.Snapshot(),
		Ascensions: g.asc.Count(),
		AutoSell:   &as,
		GoldStreak: g.streak,
		RunKills:   g.runKills,
	}
}

// Save serializes the game into store under key.
func (g *Game) Save(ctx context.Context, store Store, key string) error {
	if key == "" {
		key = DefaultSaveKey
	}
	data, err := json.Marshal(g.Snapshot())
	if err != nil {
		return fmt.Errorf("session: encode save: %w", err)
	}
	if err := store.Save(ctx, key, string(data)); err != nil {
		return err
	}
	g.logger.Debug("game saved", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Load replaces the game state with the save under key. Missing fields are
// back-filled; a save taken after death loads as dead.
func (g *Game) Load(ctx context.Context, store Store, key string) error {
	if key == "" {
		key = DefaultSaveKey
	}
	raw, err := store.Load(ctx, key)
	if err != nil {
		return err
	}
	var data SaveData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return fmt.Errorf("session: decode save: %w", err)
	}
	g.Restore(data)
	g.logger.Info("game loaded",
		zap.String("key", key),
		zap.Int("level", g.char.Level),
		zap.Int("ascensions", g.asc.Count()))
	return nil
}

// Restore applies decoded save data.
func (g *Game) Restore(data SaveData) {
	if data.Player == nil {
		data.Player = player.NewCharacter(g.rules)
	}
	data.Player.Normalize(g.rules)
	g.char = data.Player

	g.zones.Restore(data.State)
	g.tree.Restore(data.Talents)
	g.asc.Restore(data.Ascensions)
	if data.AutoSell != nil {
		g.autoSell = *data.AutoSell
	}
	if g.autoSell.Rarities == nil {
		g.autoSell.Rarities = map[resource.Rarity]bool{}
	}
	if g.autoSell.Types == nil {
		g.autoSell.Types = map[resource.Slot]bool{}
	}
	g.streak = max(data.GoldStreak, 0)
	g.runKills = max(data.RunKills, 0)

	g.encounter.Clear()
	g.passive.Reset()
	g.learnedXP, g.learnedTicks = 0, 0
	g.death = nil
	g.char.FillHP(g.char.Stats(g.tree.Bonuses(), g.rules).MaxHP)
	if g.char.IsDead() {
		g.encounter.Halt()
		g.death = &Death{
			Message: g.endRunLabel,
			Level:   g.char.Level,
			Zone:    g.zones.CurrentID(),
		}
	}
	g.log(CategorySystem, "load", "Game loaded.")
	g.dirty.all()
}
