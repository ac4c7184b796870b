// Package audit persists finished runs to the database in the background.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kasuganosora/idlerpg/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	queueSize     = 256
	batchSize     = 50
	flushInterval = 2 * time.Second
)

// RunEntry describes one run that ended in an ascension.
type RunEntry struct {
	TraceID      string
	Ascension    int
	LevelReached int
	StartLevel   int
	Gold         int
	Kills        int
	TalentPoints int
	Zone         string
	KilledBy     string
	Talents      any
}

// Service writes run records asynchronously in batches.
type Service struct {
	db       *gorm.DB
	ch       chan *model.RunRecord
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &Service{
		db:     db,
		ch:     make(chan *model.RunRecord, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// RecordRun enqueues a run for async DB write. It never blocks the
// simulation: a full queue drops the entry with a warning.
func (svc *Service) RecordRun(entry RunEntry) {
	talents, err := json.Marshal(entry.Talents)
	if err != nil {
		talents = []byte("{}")
	}
	record := &model.RunRecord{
		TraceID:      entry.TraceID,
		Ascension:    entry.Ascension,
		LevelReached: entry.LevelReached,
		StartLevel:   entry.StartLevel,
		Gold:         entry.Gold,
		Kills:        entry.Kills,
		TalentPoints: entry.TalentPoints,
		Zone:         entry.Zone,
		KilledBy:     entry.KilledBy,
		Talents:      datatypes.JSON(talents),
	}
	select {
	case svc.ch <- record:
	default:
		svc.logger.Warn("run history queue full, dropping entry",
			zap.Int("ascension", entry.Ascension))
	}
}

// Recent returns the latest limit run records, newest first.
func (svc *Service) Recent(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []model.RunRecord
	err := svc.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// Stop flushes remaining entries and shuts down the worker.
// It blocks until the worker goroutine has finished.
func (svc *Service) Stop(_ context.Context) {
	svc.stopOnce.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.RunRecord, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("run history write failed", zap.Error(err), zap.Int("count", len(batch)))
		}
		batch = batch[:0]
	}

	for {
		select {
		case entry := <-svc.ch:
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case entry := <-svc.ch:
					batch = append(batch, entry)
				default:
					flush()
					return
				}
			}
		}
	}
}
