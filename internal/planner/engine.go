package planner

import "github.com/samber/lo"

// Engine drives the first-fit search. One instance owns one run's
// tracker state; it is not safe for concurrent use and is discarded
// after the run.
type Engine struct {
	grid      Grid
	conflicts *ConflictTracker
	rooms     *RoomAllocator
}

// NewEngine prepares fresh tracker state for a single planning run.
func NewEngine(grid Grid, rooms []Room, pairs []ProximityPair) *Engine {
	return &Engine{
		grid:      grid,
		conflicts: NewConflictTracker(),
		rooms:     NewRoomAllocator(rooms, pairs),
	}
}

// Schedule places each group at the first (day, slot, rooms)
// combination that satisfies every constraint, in the given group
// order. There is no backtracking: a committed placement is never
// revisited, and a group that exhausts the grid is reported
// unscheduled without aborting the run.
func (e *Engine) Schedule(groups []Group) Result {
	result := Result{Events: make([]Event, 0, len(groups))}

	for _, group := range groups {
		day, slot, allocation, ok := e.findPlacement(group)
		if !ok {
			result.Unscheduled = append(result.Unscheduled, group.Title)
			continue
		}

		e.conflicts.Commit(day, slot, group.Students)
		e.rooms.Commit(day, slot, allocation)
		result.Events = append(result.Events, e.emit(group, day, slot, allocation)...)
	}

	return result
}

func (e *Engine) findPlacement(group Group) (day, slot int, allocation []Room, ok bool) {
	for di, date := range e.grid.Days {
		if _, blocked := group.Blocked[weekdayIndex(date)]; blocked {
			continue
		}
		for si := range e.grid.Slots {
			if e.conflicts.WouldConflict(di, si, group.Students) {
				continue
			}
			rooms, found := e.rooms.FindAllocation(di, si, group.Enrollment)
			if !found {
				continue
			}
			return di, si, rooms, true
		}
	}
	return 0, 0, nil, false
}

// emit produces one event per member section. All sections of a group
// share the same day, slot and rooms: they are one physical sitting.
func (e *Engine) emit(group Group, day, slot int, allocation []Room) []Event {
	primary := allocation[0]
	extras := allocation[1:]
	extraIDs := lo.Map(extras, func(r Room, _ int) string { return r.ID })
	extraNames := lo.Map(extras, func(r Room, _ int) string { return r.Name })

	start := e.grid.Days[day].Add(e.grid.Slots[slot])
	end := start.Add(group.Duration)

	events := make([]Event, 0, len(group.Sections))
	for _, section := range group.Sections {
		events = append(events, Event{
			SectionID:      section.ID,
			CourseCode:     section.Code,
			InstructorID:   section.InstructorID,
			RoomID:         primary.ID,
			RoomName:       primary.Name,
			ExtraRoomIDs:   extraIDs,
			ExtraRoomNames: extraNames,
			Day:            e.grid.Days[day],
			Start:          start,
			End:            end,
		})
	}
	return events
}
