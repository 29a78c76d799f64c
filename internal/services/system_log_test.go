package services

import (
	"testing"
	"time"

	"github.com/mkhalaf/tasktrail/internal/models"
)

func TestLogInfo_WritesEntry(t *testing.T) {
	db := newTestDB(t)
	InitSystemLogger(db)
	defer InitSystemLogger(nil)

	uid := uint(7)
	LogInfo("Tasks", "Create", "task created", &uid, "127.0.0.1", "req-123", map[string]interface{}{"task_id": 1})

	var entry models.SystemLog
	if err := db.First(&entry).Error; err != nil {
		t.Fatalf("log entry should be written: %v", err)
	}
	if entry.Level != "info" || entry.Module != "Tasks" || entry.Action != "Create" {
		t.Errorf("unexpected entry: %+v", entry)
	}
	if entry.RequestID != "req-123" {
		t.Errorf("request id should be recorded, got %q", entry.RequestID)
	}
	if entry.UserID == nil || *entry.UserID != 7 {
		t.Errorf("user id should be recorded, got %v", entry.UserID)
	}
	if entry.Extra == "" {
		t.Error("extra payload should be serialized")
	}
}

func TestLog_NoDatabaseConfigured(t *testing.T) {
	InitSystemLogger(nil)
	// Must not panic without a database.
	LogWarning("Tasks", "Update", "noop", nil, "", "", nil)
}

func TestCleanupOldLogs(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemLogService(db)

	db.Create(&models.SystemLog{Level: "info", Module: "Tasks", Message: "old", CreatedAt: time.Now().AddDate(0, 0, -40)})
	db.Create(&models.SystemLog{Level: "info", Module: "Tasks", Message: "fresh", CreatedAt: time.Now()})

	deleted, err := svc.CleanupOldLogs(30)
	if err != nil {
		t.Fatalf("CleanupOldLogs failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted row, got %d", deleted)
	}

	var count int64
	db.Model(&models.SystemLog{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 remaining row, got %d", count)
	}
}

func TestCleanupOldLogs_DisabledRetention(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemLogService(db)

	db.Create(&models.SystemLog{Level: "info", Module: "Tasks", Message: "old", CreatedAt: time.Now().AddDate(0, 0, -400)})

	deleted, err := svc.CleanupOldLogs(0)
	if err != nil {
		t.Fatalf("CleanupOldLogs failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("retention 0 should delete nothing, got %d", deleted)
	}
}

func TestSystemLogList_Filters(t *testing.T) {
	db := newTestDB(t)
	svc := NewSystemLogService(db)

	db.Create(&models.SystemLog{Level: "info", Module: "Tasks", Action: "Create", Message: "a", CreatedAt: time.Now()})
	db.Create(&models.SystemLog{Level: "error", Module: "Auth", Action: "Login", Message: "b", CreatedAt: time.Now()})

	resp, err := svc.List(&SystemLogListRequest{Level: "error"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 1 || resp.Items[0].Module != "Auth" {
		t.Errorf("level filter should match one entry, got %+v", resp.Items)
	}

	resp, err = svc.List(&SystemLogListRequest{Search: "a"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("message search should match one entry, got %d", resp.Total)
	}
}
