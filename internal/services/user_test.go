package services

import (
	"errors"
	"testing"

	"github.com/mkhalaf/tasktrail/internal/models"
	"github.com/mkhalaf/tasktrail/internal/utils"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

func TestUserCreate_HashesPassword(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Create(&CreateUserRequest{Name: "Dana", Email: "dana@tasktrail.local", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.Password == "hunter22" {
		t.Error("password should be stored hashed")
	}
	if !utils.CheckPassword("hunter22", user.Password) {
		t.Error("stored hash should verify against the original password")
	}
	if user.Role != models.SystemRoleUser {
		t.Errorf("default role should be user, got %q", user.Role)
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	req := &CreateUserRequest{Name: "Dana", Email: "dana@tasktrail.local", Password: "hunter22"}
	if _, err := svc.Create(req); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := svc.Create(req)
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 409 {
		t.Fatalf("duplicate email should conflict, got %v", err)
	}
}

func TestUserUpdate(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Create(&CreateUserRequest{Name: "Dana", Email: "dana@tasktrail.local", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	name := "Dana Q"
	role := models.SystemRoleAdmin
	updated, err := svc.Update(user.ID, &UpdateUserRequest{Name: &name, Role: &role})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Dana Q" || updated.Role != models.SystemRoleAdmin {
		t.Errorf("update not applied: %+v", updated)
	}

	_, err = svc.Update(9999, &UpdateUserRequest{Name: &name})
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Fatalf("update of missing user should be not found, got %v", err)
	}
}

func TestUserDeleteRestore_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Create(&CreateUserRequest{Name: "Dana", Email: "dana@tasktrail.local", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(user.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.GetByID(user.ID); err == nil {
		t.Error("deleted user should be hidden from default lookups")
	}

	restored, err := svc.Restore(user.ID)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.Email != "dana@tasktrail.local" || restored.DeletedAt.Valid {
		t.Error("restored user should match pre-delete state with tombstone cleared")
	}

	if _, err := svc.Restore(user.ID); err != nil {
		t.Errorf("restore of a live user should succeed: %v", err)
	}

	var appErr *response.AppError
	if _, err := svc.Restore(9999); !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Errorf("restore of a never-existing user should be not found, got %v", err)
	}
}

func TestUserDelete_KeepsMemberships(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	project := createTestProject(t, db, "alpha")

	user, err := svc.Create(&CreateUserRequest{Name: "Dana", Email: "dana@tasktrail.local", Password: "hunter22"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	attachWithRole(t, db, project.ID, user.ID, models.RoleDeveloper)

	if err := svc.Delete(user.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	var count int64
	db.Model(&models.Membership{}).Where("user_id = ?", user.ID).Count(&count)
	if count != 1 {
		t.Errorf("membership should survive a soft user delete, got %d rows", count)
	}
}

func TestUserList_SearchAndPagination(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	names := []string{"Ana", "Ben", "Cleo", "Dee", "Ed", "Fay"}
	for i, n := range names {
		email := string(rune('a'+i)) + "@tasktrail.local"
		if _, err := svc.Create(&CreateUserRequest{Name: n, Email: email, Password: "hunter22"}); err != nil {
			t.Fatalf("Create %q failed: %v", n, err)
		}
	}

	resp, err := svc.List(&UserListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Meta.Total != 6 || resp.Meta.PerPage != 5 {
		t.Errorf("expected 6 users with per_page 5, got %+v", resp.Meta)
	}

	resp, err = svc.List(&UserListRequest{Search: "Cleo"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if resp.Meta.Total != 1 || resp.Items[0].Name != "Cleo" {
		t.Errorf("search should match by name, got %+v", resp.Items)
	}
}
