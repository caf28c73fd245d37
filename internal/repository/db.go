package repository

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/maggie-r-m-88/commonscapes/internal/config"
	"github.com/maggie-r-m-88/commonscapes/internal/domain"
)

// InitDB opens the Postgres connection, ensures the pgvector extension and
// runs migrations.
func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Similarity queries depend on pgvector.
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return nil, fmt.Errorf("failed to ensure vector extension: %w", err)
	}

	if err := db.AutoMigrate(
		&domain.Image{},
		&domain.TagCandidate{},
		&domain.Tag{},
		&domain.TagCategory{},
		&domain.Category{},
	); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
