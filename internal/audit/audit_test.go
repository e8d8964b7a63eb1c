package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/nebari-dev/registrar/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestLogAction(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	err = LogAction(context.Background(), db, CreateAction(models.Roles), Resource(models.Roles, 3), "10.0.0.1",
		map[string]string{"name": "ISSO"})
	if err != nil {
		t.Fatalf("LogAction: %v", err)
	}

	var entry models.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if entry.Action != "create_role" {
		t.Errorf("action = %q, want create_role", entry.Action)
	}
	if entry.Resource != "role:3" {
		t.Errorf("resource = %q, want role:3", entry.Resource)
	}
	if entry.RemoteAddr != "10.0.0.1" {
		t.Errorf("remote addr = %q", entry.RemoteAddr)
	}

	var details map[string]string
	if err := json.Unmarshal([]byte(entry.DetailsJSON), &details); err != nil {
		t.Fatalf("details are not JSON: %v", err)
	}
	if details["name"] != "ISSO" {
		t.Errorf("details = %v", details)
	}
}

func TestLogAction_UnmarshalableDetails(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	if err := LogAction(context.Background(), db, SeedAction(models.Components), "component:1", "", make(chan int)); err != nil {
		t.Fatalf("LogAction: %v", err)
	}

	var entry models.AuditLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	if entry.DetailsJSON != "{}" {
		t.Errorf("details = %q, want {}", entry.DetailsJSON)
	}
}
