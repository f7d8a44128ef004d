// Package planner implements the exam scheduling core: grouping of
// equivalent course sections, greedy first-fit placement over a fixed
// time grid, student conflict tracking and capacity-aware room
// allocation with one-hop overflow into proximate rooms.
//
// The package is pure computation. It performs no I/O; callers load a
// snapshot, run the engine and persist the result.
package planner

import (
	"fmt"
	"time"
)

// Section is one scheduling-eligible course section.
type Section struct {
	ID           string
	Code         string
	Title        string
	StudentCount int
	Students     []string
	InstructorID string
	Duration     time.Duration
}

// Room is an available exam room.
type Room struct {
	ID       string
	Name     string
	Capacity int
}

// ProximityPair marks two rooms as combinable for a single overflowing
// exam. The relation is symmetric and not transitive; neighbour lookup
// is one hop from a primary room only.
type ProximityPair struct {
	A string
	B string
}

// Grid is the exogenous exam time grid: candidate days in the order
// they should be tried, and slot start offsets from midnight tried in
// order within each day.
type Grid struct {
	Days  []time.Time
	Slots []time.Duration
}

// Input is the full snapshot a planning run operates on.
type Input struct {
	Sections  []Section
	Rooms     []Room
	Proximity []ProximityPair
	Blackouts map[string][]int
	Grid      Grid
}

// Event is one placed exam, emitted once per member section of a group.
type Event struct {
	SectionID      string
	CourseCode     string
	InstructorID   string
	RoomID         string
	RoomName       string
	ExtraRoomIDs   []string
	ExtraRoomNames []string
	Day            time.Time
	Start          time.Time
	End            time.Time
}

// Result is the outcome of one planning run.
type Result struct {
	Events      []Event
	Unscheduled []string
}

type slotKey struct {
	Day  int
	Slot int
}

// weekdayIndex maps time.Weekday onto the 0=Monday convention used by
// instructor blackouts.
func weekdayIndex(day time.Time) int {
	return (int(day.Weekday()) + 6) % 7
}

// BuildGrid parses configured day (YYYY-MM-DD) and slot (HH:MM) lists
// into a Grid, preserving order.
func BuildGrid(days []string, slots []string) (Grid, error) {
	grid := Grid{
		Days:  make([]time.Time, 0, len(days)),
		Slots: make([]time.Duration, 0, len(slots)),
	}
	for _, raw := range days {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return Grid{}, fmt.Errorf("parse exam day %q: %w", raw, err)
		}
		grid.Days = append(grid.Days, day)
	}
	for _, raw := range slots {
		t, err := time.Parse("15:04", raw)
		if err != nil {
			return Grid{}, fmt.Errorf("parse slot time %q: %w", raw, err)
		}
		grid.Slots = append(grid.Slots, time.Duration(t.Hour())*time.Hour+time.Duration(t.Minute())*time.Minute)
	}
	return grid, nil
}

// Run builds groups from the snapshot, orders them and schedules them.
func Run(input Input) Result {
	groups := OrderGroups(BuildGroups(input.Sections, input.Blackouts))
	engine := NewEngine(input.Grid, input.Rooms, input.Proximity)
	return engine.Schedule(groups)
}
