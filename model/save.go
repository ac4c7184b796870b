package model

import (
	"time"

	"gorm.io/datatypes"
)

// SaveSlot holds one serialized game under its save key. The summary
// columns mirror the blob so slots can be listed without decoding it.
type SaveSlot struct {
	SaveKey    string         `gorm:"primaryKey;size:64" json:"save_key"`
	Data       datatypes.JSON `gorm:"not null" json:"data"`
	Level      int            `json:"level"`
	Gold       int            `json:"gold"`
	Ascensions int            `json:"ascensions"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime:milli" json:"updated_at"`
}
