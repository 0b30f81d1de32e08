package store

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// connection opens a GORM connection, preferring Postgres and falling
// back to a local SQLite file if Postgres is unreachable. local reports
// which of the two was actually used.
func connection(log zerolog.Logger, sqlitePath string) (db *gorm.DB, local bool, err error) {
	db, err = openPostgres()
	if err == nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			if pingErr := sqlDB.Ping(); pingErr == nil {
				sqlDB.SetMaxOpenConns(10)
				log.Info().Msg("store: connected to Postgres frame ledger")
				return db, false, nil
			}
		}
		log.Warn().Msg("store: Postgres frame ledger unreachable, falling back to SQLite")
	} else {
		log.Warn().Err(err).Msg("store: failed to open Postgres frame ledger, falling back to SQLite")
	}

	db, err = openSqlite(sqlitePath)
	if err != nil {
		return nil, true, fmt.Errorf("store: opening SQLite fallback: %w", err)
	}
	log.Info().Str("path", sqlitePath).Msg("store: using local SQLite frame ledger")
	return db, true, nil
}

func openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf(`host=%s port=%s user=%s password=%s dbname=%s sslmode=disable`,
		viper.GetString("db.host"),
		viper.GetString("db.port"),
		viper.GetString("db.username"),
		viper.GetString("db.password"),
		viper.GetString("db.database"),
	)
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// openSqlite opens a SQLite database. An empty path uses a shared
// in-memory database.
func openSqlite(path string) (*gorm.DB, error) {
	dsn := path
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode = MEMORY;",
		"PRAGMA synchronous = OFF;",
		"PRAGMA temp_store = MEMORY;",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("store: setting pragma: %w", err)
		}
	}
	return db, nil
}
