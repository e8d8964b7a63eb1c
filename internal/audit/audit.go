package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nebari-dev/registrar/internal/models"
	"gorm.io/gorm"
)

// LogAction records an audit log entry
func LogAction(ctx context.Context, db *gorm.DB, action, resource, remoteAddr string, details interface{}) error {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	entry := models.AuditLog{
		Action:      action,
		Resource:    resource,
		RemoteAddr:  remoteAddr,
		DetailsJSON: string(detailsJSON),
		Timestamp:   time.Now().UTC(),
	}

	return db.WithContext(ctx).Create(&entry).Error
}

// CreateAction is the action name for a record created through the API or form.
func CreateAction(kind models.Kind) string { return "create_" + kind.Singular }

// SeedAction is the action name for a record loaded from a seed document.
func SeedAction(kind models.Kind) string { return "seed_" + kind.Singular }

// Resource formats the resource reference for a record ("role:3").
func Resource(kind models.Kind, id uint) string {
	return fmt.Sprintf("%s:%d", kind.Singular, id)
}
