package planner

// ConflictTracker records, per (day, slot), the union of student
// identifiers already committed there. Write-once within a run: there
// is no removal operation.
type ConflictTracker struct {
	byKey map[slotKey]map[string]struct{}
}

// NewConflictTracker returns an empty tracker.
func NewConflictTracker() *ConflictTracker {
	return &ConflictTracker{byKey: make(map[slotKey]map[string]struct{})}
}

// WouldConflict reports whether any student in the candidate set is
// already committed to the given slot.
func (t *ConflictTracker) WouldConflict(day, slot int, students map[string]struct{}) bool {
	committed, ok := t.byKey[slotKey{Day: day, Slot: slot}]
	if !ok {
		return false
	}
	// iterate the smaller set
	small, large := students, committed
	if len(large) < len(small) {
		small, large = large, small
	}
	for studentNo := range small {
		if _, clash := large[studentNo]; clash {
			return true
		}
	}
	return false
}

// Commit unions the student set into the slot's committed set.
func (t *ConflictTracker) Commit(day, slot int, students map[string]struct{}) {
	key := slotKey{Day: day, Slot: slot}
	committed, ok := t.byKey[key]
	if !ok {
		committed = make(map[string]struct{}, len(students))
		t.byKey[key] = committed
	}
	for studentNo := range students {
		committed[studentNo] = struct{}{}
	}
}
