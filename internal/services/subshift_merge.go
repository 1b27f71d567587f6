package services

import (
	"fmt"
	"time"

	"github.com/volunty/volunty/internal/models"
)

// SubShiftInput is the desired state of one slot in an event update.
type SubShiftInput struct {
	RoleName  string     `json:"role_name" binding:"required"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
	Capacity  int        `json:"capacity"`
}

// shiftDiff is the outcome of matching desired slots against existing
// rows. Matched rows survive (keeping their assignments), possibly
// with a capacity update; everything else is created or deleted.
type shiftDiff struct {
	create []SubShiftInput
	update []capacityChange
	remove []models.SubShift
}

type capacityChange struct {
	shift    models.SubShift
	capacity int
}

// shiftKey identifies a slot by role name and explicit window. Nil
// window bounds key as empty strings, so an inherited-window slot and
// an explicit one never collide even at identical instants.
func shiftKey(role string, start, end *time.Time) string {
	s, e := "", ""
	if start != nil {
		s = start.UTC().Format(time.RFC3339)
	}
	if end != nil {
		e = end.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("%s|%s|%s", role, s, e)
}

// diffSubShifts matches desired against existing by identity key.
// Rows whose key appears on both sides are kept; applying the same
// desired list twice yields an empty create/remove set.
func diffSubShifts(existing []models.SubShift, desired []SubShiftInput) shiftDiff {
	var diff shiftDiff

	existingByKey := make(map[string]*models.SubShift, len(existing))
	for i := range existing {
		existingByKey[shiftKey(existing[i].RoleName, existing[i].StartTime, existing[i].EndTime)] = &existing[i]
	}

	desiredKeys := make(map[string]bool, len(desired))
	for _, d := range desired {
		key := shiftKey(d.RoleName, d.StartTime, d.EndTime)
		if desiredKeys[key] {
			continue // duplicate entry in the request, first one wins
		}
		desiredKeys[key] = true

		if row, ok := existingByKey[key]; ok {
			if row.Capacity != d.Capacity {
				diff.update = append(diff.update, capacityChange{shift: *row, capacity: d.Capacity})
			}
			continue
		}
		diff.create = append(diff.create, d)
	}

	for i := range existing {
		if !desiredKeys[shiftKey(existing[i].RoleName, existing[i].StartTime, existing[i].EndTime)] {
			diff.remove = append(diff.remove, existing[i])
		}
	}
	return diff
}
