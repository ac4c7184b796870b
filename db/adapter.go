// Package db opens the relational store that holds save slots and the
// ascension run history.
package db

import (
	"fmt"

	"github.com/kasuganosora/idlerpg/config"
	dbmysql "github.com/kasuganosora/idlerpg/db/mysql"
	dbsqlite "github.com/kasuganosora/idlerpg/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Mode {
	case ModeMemory:
		db, err = dbsqlite.OpenMemory()
	case ModeSQLite:
		db, err = dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		db, err = dbmysql.Open(cfg.MySQLDSN, dbmysql.Pool{
			MaxOpen: cfg.MySQLMaxOpen,
			MaxIdle: cfg.MySQLMaxIdle,
			MaxLife: cfg.MySQLMaxLife,
		})
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", cfg.Mode, err)
	}
	return db, nil
}
