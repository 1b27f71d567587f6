package services

import (
	"context"
	"testing"
)

func TestNotifyProcessor_RoutesSwapCreated(t *testing.T) {
	db := newTestDB(t)
	owner, assignment := setupSwapFixture(t, db)

	result, err := NewSwapService(db, testBaseURL).Create(assignment.ID, owner.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	notify := NewNotifyService(db, NewSettingsService(db), testBaseURL)
	proc := NewNotifyProcessor(notify, nil)

	// Email delivery is disabled by default; the job must still
	// resolve the request and finish cleanly.
	task := &NotifyTask{Kind: NotifySwapCreated, SwapRequestID: result.ID}
	if err := proc(context.Background(), task); err != nil {
		t.Fatalf("processing swap_created task failed: %v", err)
	}
}

func TestNotifySwapCreated_UnknownRequest(t *testing.T) {
	db := newTestDB(t)
	notify := NewNotifyService(db, NewSettingsService(db), testBaseURL)

	if err := notify.SwapCreated(9999); err == nil {
		t.Fatal("expected an error for an unknown swap request")
	}
}
