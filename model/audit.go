package model

import (
	"time"

	"gorm.io/datatypes"
)

// RunRecord is one finished run, written when the character ascends.
type RunRecord struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID      string         `gorm:"index:idx_run_trace;size:36" json:"trace_id"`
	Ascension    int            `gorm:"index:idx_run_ascension;not null" json:"ascension"`
	LevelReached int            `json:"level_reached"`
	StartLevel   int            `json:"start_level"`
	Gold         int            `json:"gold"`
	Kills        int            `json:"kills"`
	TalentPoints int            `json:"talent_points"`
	Zone         string         `gorm:"size:32" json:"zone"`
	KilledBy     string         `gorm:"size:64" json:"killed_by"`
	Talents      datatypes.JSON `json:"talents"`
	CreatedAt    time.Time      `gorm:"index:idx_run_created;autoCreateTime:milli" json:"created_at"`
}
