package ws

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kasuganosora/idlerpg/game/ascension"
	"github.com/kasuganosora/idlerpg/game/player"
	"github.com/kasuganosora/idlerpg/game/session"
	"github.com/kasuganosora/idlerpg/game/world"
	"github.com/kasuganosora/idlerpg/resource"
)

// PublicError reports whether err is a player-facing game error whose text
// can be sent to the client.
func PublicError(err error) bool {
	for _, target := range []error{
		errBadPayload,
		player.ErrItemNotFound,
		player.ErrInvalidSlot,
		player.ErrSlotEmpty,
		player.ErrOffhandWithTwoHanded,
		world.ErrUnknownZone,
		world.ErrZoneLocked,
		session.ErrCombatActive,
		session.ErrDead,
		session.ErrRunnerStopped,
		ascension.ErrStillAlive,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// RegisterGameHandlers wires the player commands to r. Every handler runs
// its game access through runner.
func RegisterGameHandlers(r *Router, runner *session.Runner) {
	r.On("snapshot", func(ctx context.Context, _ *Client, payload json.RawMessage) (any, error) {
		var req struct {
			Sort player.SortKey `json:"sort"`
			Slot resource.Slot  `json:"slot"`
		}
		if len(payload) > 0 {
			if err := decode(payload, &req); err != nil {
				return nil, err
			}
		}
		if req.Sort == "" {
			req.Sort = player.SortNew
		}
		var v session.View
		err := runner.Do(ctx, func(g *session.Game) error {
			v = g.View(req.Sort, req.Slot)
			return nil
		})
		return v, err
	})

	r.On("zone", func(ctx context.Context, _ *Client, payload json.RawMessage) (any, error) {
		var req struct {
			Zone string `json:"zone"`
		}
		if err := decode(payload, &req); err != nil || req.Zone == "" {
			return nil, errBadPayload
		}
		err := runner.Do(ctx, func(g *session.Game) error { return g.ChangeZone(req.Zone) })
		return map[string]any{"zone": req.Zone}, err
	})

	r.On("equip", func(ctx context.Context, _ *Client, payload json.RawMessage) (any, error) {
		var req struct {
			ItemID string `json:"item_id"`
		}
		if err := decode(payload, &req); err != nil || req.ItemID == "" {
			return nil, errBadPayload
		}
		var st player.Stats
		err := runner.Do(ctx, func(g *session.Game) error {
			if err := g.Equip(req.ItemID); err != nil {
				return err
			}
			st = g.Stats()
			return nil
		})
		return map[string]any{"stats": st}, err
	})

	r.On("unequip", func(ctx context.Context, _ *Client, payload json.RawMessage) (any, error) {
		var req struct {
			Slot resource.Slot `json:"slot"`
		}
		if err := decode(payload, &req); err != nil {
			return nil, err
		}
		var st player.Stats
		err := runner.Do(ctx, func(g *session.Game) error {
			if err := g.Unequip(req.Slot); err != nil {
				return err
			}
			st = g.Stats()
			return nil
		})
		return map[string]any{"stats": st}, err
	})

	r.On("sell", func(ctx context.Context, _ *Client, payload json.RawMessage) (any, error) {
		var req struct {
			ItemID string `json:"item_id"`
		}
		if err := decode(payload, &req); err != nil || req.ItemID == "" {
			return nil, errBadPayload
		}
		var earned, gold int
		err := runner.Do(ctx, func(g *session.Game) error {
			var err error
			earned, err = g.Sell(req.ItemID)
			gold = g.Character().Gold
			return err
		})
		return map[string]any{"gold_earned": earned, "gold": gold}, err
	})

	r.On("sell_junk", func(ctx context.Context, _ *Client, _ json.RawMessage) (any, error) {
		var sold, earned int
		err := runner.Do(ctx, func(g *session.Game) error {
			sold, earned = g.SellJunk()
			return nil
		})
		return map[string]any{"sold": sold, "gold_earned": earned}, err
	})

	r.On("allocate", func(ctx context.Context, _ *Client, payload json.RawMessage) (any, error) {
		var req struct {
			Pathway string `json:"pathway"`
			Node    string `json:"node"`
		}
		if err := decode(payload, &req); err != nil || req.Pathway == "" || req.Node == "" {
			return nil, errBadPayload
		}
		var (
			ok          bool
			level, gold int
		)
		err := runner.Do(ctx, func(g *session.Game) error {
			var err error
			ok, err = g.Allocate(ctx, req.Pathway, req.Node)
			level = g.Tree().Level(req.Pathway, req.Node)
			gold = g.Character().Gold
			return err
		})
		return map[string]any{"ok": ok, "level": level, "gold": gold}, err
	})

	r.On("ascend", func(ctx context.Context, _ *Client, _ json.RawMessage) (any, error) {
		var res ascension.Result
		err := runner.Do(ctx, func(g *session.Game) error {
			var err error
			res, err = g.Ascend(ctx)
			return err
		})
		return res, err
	})
}
