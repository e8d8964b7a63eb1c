package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/nebari-dev/registrar/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrServerIDMissing is returned by ServerID before EnsureServerID has run.
var ErrServerIDMissing = errors.New("server ID not initialized")

// EnsureServerID returns the instance identifier, generating and storing one
// on first start. Concurrent starts against the same database agree on a
// single value because the insert is a no-op when the key already exists.
func EnsureServerID(ctx context.Context, db *gorm.DB) (string, error) {
	candidate := models.ServerConfig{
		Key:   models.ServerConfigKeyServerID,
		Value: uuid.NewString(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&candidate).Error
	if err != nil {
		return "", fmt.Errorf("failed to store server ID: %w", err)
	}
	return ServerID(ctx, db)
}

// ServerID reads the instance identifier stored by EnsureServerID.
func ServerID(ctx context.Context, db *gorm.DB) (string, error) {
	var cfg models.ServerConfig
	err := db.WithContext(ctx).
		Where("key = ?", models.ServerConfigKeyServerID).
		First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrServerIDMissing
	}
	if err != nil {
		return "", fmt.Errorf("failed to query server config: %w", err)
	}
	return cfg.Value, nil
}
