package services

import (
	"testing"
	"time"

	"github.com/volunty/volunty/internal/models"
)

func TestDiffSubShifts_Idempotent(t *testing.T) {
	start := timePtr(time.Date(2026, 9, 5, 9, 0, 0, 0, time.UTC))
	end := timePtr(time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC))

	existing := []models.SubShift{
		{ID: 1, RoleName: "Greeter", StartTime: start, EndTime: end, Capacity: 2},
		{ID: 2, RoleName: "Cook", Capacity: 1},
	}
	desired := []SubShiftInput{
		{RoleName: "Greeter", StartTime: start, EndTime: end, Capacity: 2},
		{RoleName: "Cook", Capacity: 1},
	}

	diff := diffSubShifts(existing, desired)
	if len(diff.create) != 0 || len(diff.remove) != 0 || len(diff.update) != 0 {
		t.Errorf("expected empty diff, got create=%d update=%d remove=%d",
			len(diff.create), len(diff.update), len(diff.remove))
	}
}

func TestDiffSubShifts_CapacityChangeKeepsRow(t *testing.T) {
	existing := []models.SubShift{
		{ID: 1, RoleName: "Greeter", Capacity: 2},
	}
	desired := []SubShiftInput{
		{RoleName: "Greeter", Capacity: 5},
	}

	diff := diffSubShifts(existing, desired)
	if len(diff.create) != 0 || len(diff.remove) != 0 {
		t.Errorf("expected no create/remove, got create=%d remove=%d", len(diff.create), len(diff.remove))
	}
	if len(diff.update) != 1 {
		t.Fatalf("expected 1 capacity update, got %d", len(diff.update))
	}
	if diff.update[0].shift.ID != 1 || diff.update[0].capacity != 5 {
		t.Errorf("unexpected update: %+v", diff.update[0])
	}
}

func TestDiffSubShifts_WindowChangeReplacesRow(t *testing.T) {
	oldStart := timePtr(time.Date(2026, 9, 5, 9, 0, 0, 0, time.UTC))
	newStart := timePtr(time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC))
	end := timePtr(time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC))

	existing := []models.SubShift{
		{ID: 1, RoleName: "Greeter", StartTime: oldStart, EndTime: end, Capacity: 2},
	}
	desired := []SubShiftInput{
		{RoleName: "Greeter", StartTime: newStart, EndTime: end, Capacity: 2},
	}

	diff := diffSubShifts(existing, desired)
	if len(diff.create) != 1 || len(diff.remove) != 1 {
		t.Fatalf("expected replace, got create=%d remove=%d", len(diff.create), len(diff.remove))
	}
	if diff.remove[0].ID != 1 {
		t.Errorf("removed wrong row: %+v", diff.remove[0])
	}
}

func TestDiffSubShifts_InheritedWindowDistinctFromExplicit(t *testing.T) {
	start := timePtr(time.Date(2026, 9, 5, 9, 0, 0, 0, time.UTC))
	end := timePtr(time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC))

	existing := []models.SubShift{
		{ID: 1, RoleName: "Greeter", Capacity: 2},
	}
	desired := []SubShiftInput{
		{RoleName: "Greeter", StartTime: start, EndTime: end, Capacity: 2},
	}

	diff := diffSubShifts(existing, desired)
	if len(diff.create) != 1 || len(diff.remove) != 1 {
		t.Errorf("inherited and explicit windows should not match, got create=%d remove=%d",
			len(diff.create), len(diff.remove))
	}
}

func TestDiffSubShifts_DuplicateDesiredEntriesCollapse(t *testing.T) {
	existing := []models.SubShift{}
	desired := []SubShiftInput{
		{RoleName: "Greeter", Capacity: 2},
		{RoleName: "Greeter", Capacity: 9},
	}

	diff := diffSubShifts(existing, desired)
	if len(diff.create) != 1 {
		t.Fatalf("expected duplicates to collapse to 1 create, got %d", len(diff.create))
	}
	if diff.create[0].Capacity != 2 {
		t.Errorf("first duplicate should win, got capacity %d", diff.create[0].Capacity)
	}
}

func TestDiffSubShifts_MixedChanges(t *testing.T) {
	existing := []models.SubShift{
		{ID: 1, RoleName: "Greeter", Capacity: 2},
		{ID: 2, RoleName: "Cook", Capacity: 1},
	}
	desired := []SubShiftInput{
		{RoleName: "Cook", Capacity: 3},
		{RoleName: "Driver", Capacity: 1},
	}

	diff := diffSubShifts(existing, desired)
	if len(diff.create) != 1 || diff.create[0].RoleName != "Driver" {
		t.Errorf("expected Driver created, got %+v", diff.create)
	}
	if len(diff.update) != 1 || diff.update[0].shift.RoleName != "Cook" {
		t.Errorf("expected Cook capacity update, got %+v", diff.update)
	}
	if len(diff.remove) != 1 || diff.remove[0].RoleName != "Greeter" {
		t.Errorf("expected Greeter removed, got %+v", diff.remove)
	}
}
