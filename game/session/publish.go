package session

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/kasuganosora/idlerpg/cache"
	"go.uber.org/zap"
)

const (
	// EventsChannel carries every activity log entry as JSON.
	EventsChannel = "game_events"
	// BacklogKey is the cache list holding the newest entries, newest first.
	BacklogKey = "idlerpg:log"

	publishTimeout = 2 * time.Second
)

// Publisher receives every activity log entry. Publish must not block.
type Publisher interface {
	Publish(e LogEntry)
}

// EventPublisher forwards log entries to a PubSub channel and keeps a
// bounded backlog list in the cache so late subscribers can catch up.
// Delivery happens on a background goroutine.
type EventPublisher struct {
	ps      cache.PubSub
	c       cache.Cache
	backlog int
	logger  *zap.Logger

	ch       chan LogEntry
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewEventPublisher starts the delivery worker. c may be nil to skip the
// backlog.
func NewEventPublisher(ps cache.PubSub, c cache.Cache, backlog int, logger *zap.Logger) *EventPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backlog <= 0 {
		backlog = 100
	}
	p := &EventPublisher{
		ps:      ps,
		c:       c,
		backlog: backlog,
		logger:  logger,
		ch:      make(chan LogEntry, 512),
		stopCh:  make(chan struct{}),
	}
	p.wg.Add(1)
	go p.worker()
	return p
}

// Publish enqueues e; a full queue drops it.
func (p *EventPublisher) Publish(e LogEntry) {
	select {
	case p.ch <- e:
	default:
		p.logger.Warn("event queue full, dropping entry", zap.Int64("seq", e.Seq))
	}
}

// Stop delivers what is queued and shuts the worker down.
func (p *EventPublisher) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

func (p *EventPublisher) worker() {
	defer p.wg.Done()
	for {
		select {
		case e := <-p.ch:
			p.deliver(e)
		case <-p.stopCh:
			for {
				select {
				case e := <-p.ch:
					p.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (p *EventPublisher) deliver(e LogEntry) {
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.Error("event encode failed", zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if p.c != nil {
		if err := p.c.PushCapped(ctx, BacklogKey, string(payload), int64(p.backlog)); err != nil {
			p.logger.Warn("event backlog push failed", zap.Error(err))
		}
	}
	if p.ps != nil {
		if err := p.ps.Publish(ctx, EventsChannel, string(payload)); err != nil {
			p.logger.Warn("event publish failed", zap.Error(err))
		}
	}
}

// Backlog reads up to n recent entries from the cache, oldest first.
func Backlog(ctx context.Context, c cache.Cache, n int) ([]LogEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := c.LRange(ctx, BacklogKey, 0, int64(n-1))
	if err != nil {
		return nil, err
	}
	out := make([]LogEntry, 0, len(raw))
	for _, s := range raw {
		var e LogEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	slices.Reverse(out)
	return out, nil
}
