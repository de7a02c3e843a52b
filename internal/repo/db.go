// Package repo implements the data persistence layer for the articles
// table, backed by GORM. This file contains database bootstrapping
// helpers for Postgres and schema migrations.
package repo

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-news-backend/internal/domain"
)

// OpenPostgres opens a Postgres connection pool for the given DSN. The
// same helper serves both the primary and the read replica; the two are
// independent endpoints with an identical schema.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Client-side spans for every query; metrics are covered by the HTTP
	// middleware, so the plugin only contributes tracing here.
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// AutoMigrate creates or updates the articles schema. Only the primary
// should be migrated; the replica receives the schema through replication.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&domain.Article{})
}
