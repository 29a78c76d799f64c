package services

import (
	"errors"
	"testing"

	"github.com/mkhalaf/tasktrail/internal/models"
	"github.com/mkhalaf/tasktrail/pkg/response"
)

func seedNoteWorld(t *testing.T) (*NoteService, *models.Task, *models.User, *models.User) {
	t.Helper()
	db := newTestDB(t)
	memberships := NewMembershipService(db)
	svc := NewNoteService(db, memberships)

	project := createTestProject(t, db, "alpha")
	tester := createTestUser(t, db, "Tess", "tess@tasktrail.local")
	dev := createTestUser(t, db, "Dana", "dana@tasktrail.local")
	attachWithRole(t, db, project.ID, tester.ID, models.RoleTester)
	attachWithRole(t, db, project.ID, dev.ID, models.RoleDeveloper)

	task := &models.Task{
		Title:       "Verify the login flow",
		Description: "Cover the lockout path",
		Priority:    models.PriorityMedium,
		Status:      models.StatusInProgress,
		DueDate:     futureDate(),
		AssignedTo:  &dev.ID,
		ProjectID:   project.ID,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	return svc, task, tester, dev
}

func TestNoteCreate_TesterOnly(t *testing.T) {
	svc, task, tester, dev := seedNoteWorld(t)

	var appErr *response.AppError
	_, err := svc.Create(dev.ID, &CreateNoteRequest{Note: "looks wrong", TaskID: task.ID})
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 403 {
		t.Errorf("developer note should be forbidden, got %v", err)
	}

	note, err := svc.Create(tester.ID, &CreateNoteRequest{Note: "fails on the second attempt", TaskID: task.ID})
	if err != nil {
		t.Fatalf("tester note should succeed: %v", err)
	}
	if note.UserID != tester.ID {
		t.Errorf("author should be the actor, got %d", note.UserID)
	}
}

func TestNoteCreate_RoleChangeUnlocks(t *testing.T) {
	db := newTestDB(t)
	memberships := NewMembershipService(db)
	svc := NewNoteService(db, memberships)

	project := createTestProject(t, db, "alpha")
	u3 := createTestUser(t, db, "Noor", "noor@tasktrail.local")
	attachWithRole(t, db, project.ID, u3.ID, models.RoleDeveloper)

	task := &models.Task{Title: "T2", Description: "d", Priority: models.PriorityLow, Status: models.StatusPending, DueDate: futureDate(), ProjectID: project.ID}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}

	var appErr *response.AppError
	_, err := svc.Create(u3.ID, &CreateNoteRequest{Note: "first try", TaskID: task.ID})
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 403 {
		t.Fatalf("developer note should be forbidden, got %v", err)
	}

	if _, err := memberships.UpdateRole(project.ID, u3.ID, &UpdateRoleRequest{Role: models.RoleTester}); err != nil {
		t.Fatalf("UpdateRole failed: %v", err)
	}

	if _, err := svc.Create(u3.ID, &CreateNoteRequest{Note: "second try", TaskID: task.ID}); err != nil {
		t.Errorf("tester note should succeed after role change: %v", err)
	}
}

func TestNoteGate_FailsClosed(t *testing.T) {
	db := newTestDB(t)
	memberships := NewMembershipService(db)
	svc := NewNoteService(db, memberships)
	user := createTestUser(t, db, "Omar", "omar@tasktrail.local")

	// A missing task denies rather than reporting absence.
	var appErr *response.AppError
	_, err := svc.Create(user.ID, &CreateNoteRequest{Note: "ghost", TaskID: 9999})
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 403 {
		t.Fatalf("note on a missing task should be forbidden, not 404, got %v", err)
	}
}

func TestNoteGate_NonMemberDenied(t *testing.T) {
	svc, task, _, _ := seedNoteWorld(t)

	var appErr *response.AppError
	_, err := svc.Create(9999, &CreateNoteRequest{Note: "outsider", TaskID: task.ID})
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 403 {
		t.Fatalf("non-member note should be forbidden, got %v", err)
	}
}

func TestNoteUpdate_GateReEvaluated(t *testing.T) {
	svc, task, tester, dev := seedNoteWorld(t)

	note, err := svc.Create(tester.ID, &CreateNoteRequest{Note: "v1", TaskID: task.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var appErr *response.AppError
	_, err = svc.Update(note.ID, dev.ID, &UpdateNoteRequest{Note: "hijacked"})
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 403 {
		t.Errorf("developer update should be forbidden, got %v", err)
	}

	updated, err := svc.Update(note.ID, tester.ID, &UpdateNoteRequest{Note: "v2"})
	if err != nil {
		t.Fatalf("tester update should succeed: %v", err)
	}
	if updated.Note != "v2" {
		t.Errorf("note text should be updated, got %q", updated.Note)
	}
}

func TestNoteUpdate_MissingNote(t *testing.T) {
	svc, _, tester, _ := seedNoteWorld(t)

	_, err := svc.Update(9999, tester.ID, &UpdateNoteRequest{Note: "nothing"})
	var appErr *response.AppError
	if !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Fatalf("update of a missing note should be not found, got %v", err)
	}
}

func TestNoteDeleteRestore(t *testing.T) {
	svc, task, tester, _ := seedNoteWorld(t)

	note, err := svc.Create(tester.ID, &CreateNoteRequest{Note: "keep me", TaskID: task.ID})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Delete(note.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	restored, err := svc.Restore(note.ID)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if restored.Note != "keep me" || restored.DeletedAt.Valid {
		t.Error("restored note should match pre-delete state with tombstone cleared")
	}

	// Restoring again is a no-op success.
	if _, err := svc.Restore(note.ID); err != nil {
		t.Errorf("restore of a live note should succeed: %v", err)
	}

	var appErr *response.AppError
	if _, err := svc.Restore(9999); !errors.As(err, &appErr) || appErr.HTTPStatus != 404 {
		t.Errorf("restore of a never-existing note should be not found, got %v", err)
	}
}

func TestListForTask_AggregatesByAssignee(t *testing.T) {
	db := newTestDB(t)
	memberships := NewMembershipService(db)
	svc := NewNoteService(db, memberships)

	project := createTestProject(t, db, "alpha")
	tester := createTestUser(t, db, "Tess", "tess@tasktrail.local")
	dev := createTestUser(t, db, "Dana", "dana@tasktrail.local")
	attachWithRole(t, db, project.ID, tester.ID, models.RoleTester)
	attachWithRole(t, db, project.ID, dev.ID, models.RoleDeveloper)

	t1 := &models.Task{Title: "T1", Description: "d", Priority: models.PriorityLow, Status: models.StatusPending, DueDate: futureDate(), AssignedTo: &dev.ID, ProjectID: project.ID}
	t2 := &models.Task{Title: "T2", Description: "d", Priority: models.PriorityLow, Status: models.StatusPending, DueDate: futureDate(), AssignedTo: &dev.ID, ProjectID: project.ID}
	db.Create(t1)
	db.Create(t2)

	// Notes written by the assignee across both tasks, plus one by the
	// tester that must not show up.
	db.Create(&models.Note{Note: "dev on t1", TaskID: t1.ID, UserID: dev.ID})
	db.Create(&models.Note{Note: "dev on t2", TaskID: t2.ID, UserID: dev.ID})
	db.Create(&models.Note{Note: "tester on t1", TaskID: t1.ID, UserID: tester.ID})

	resp, err := svc.ListForTask(t1.ID)
	if err != nil {
		t.Fatalf("ListForTask failed: %v", err)
	}

	if resp.TaskTitle != "T1" {
		t.Errorf("task title should be T1, got %q", resp.TaskTitle)
	}
	if resp.AssignedUser == nil || resp.AssignedUser.ID != dev.ID {
		t.Error("assigned user should be embedded")
	}
	if len(resp.Notes) != 2 {
		t.Fatalf("expected the assignee's notes across all tasks, got %d", len(resp.Notes))
	}
	for _, n := range resp.Notes {
		if n.UserID != dev.ID {
			t.Errorf("aggregation should only include the assignee's notes, got author %d", n.UserID)
		}
	}
}

func TestListForTask_Unassigned(t *testing.T) {
	db := newTestDB(t)
	svc := NewNoteService(db, NewMembershipService(db))
	project := createTestProject(t, db, "alpha")

	task := &models.Task{Title: "loose end", Description: "d", Priority: models.PriorityLow, Status: models.StatusPending, DueDate: futureDate(), ProjectID: project.ID}
	db.Create(task)

	resp, err := svc.ListForTask(task.ID)
	if err != nil {
		t.Fatalf("ListForTask failed: %v", err)
	}
	if resp.AssignedUser != nil || len(resp.Notes) != 0 {
		t.Errorf("unassigned task should yield no user and no notes, got %+v", resp)
	}
}
