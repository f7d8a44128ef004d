// Package csvio parses the spreadsheet uploads the planner is fed
// with: course rosters, room capacities and room proximity lists.
package csvio

import (
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// RosterRow is one roster spreadsheet line binding a student to a
// course section.
type RosterRow struct {
	CourseCode  string `csv:"course_code"`
	StudentNo   string `csv:"student_no"`
	StudentName string `csv:"student_name"`
}

// RoomRow is one room capacity spreadsheet line.
type RoomRow struct {
	Name     string `csv:"room"`
	Capacity int    `csv:"capacity"`
}

// ProximityRow lists the rooms close enough to a primary room to host
// one overflowing exam together. Neighbors is a semicolon-separated
// list of room names.
type ProximityRow struct {
	Room      string `csv:"room"`
	Neighbors string `csv:"neighbors"`
}

// ParseRosters reads roster rows from an uploaded spreadsheet.
func ParseRosters(r io.Reader) ([]RosterRow, error) {
	var rows []RosterRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse roster csv: %w", err)
	}
	for i := range rows {
		rows[i].CourseCode = strings.ToUpper(strings.TrimSpace(rows[i].CourseCode))
		rows[i].StudentNo = strings.TrimSpace(rows[i].StudentNo)
		rows[i].StudentName = strings.TrimSpace(rows[i].StudentName)
	}
	return rows, nil
}

// ParseRooms reads room capacity rows from an uploaded spreadsheet.
func ParseRooms(r io.Reader) ([]RoomRow, error) {
	var rows []RoomRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse room csv: %w", err)
	}
	for i := range rows {
		rows[i].Name = strings.TrimSpace(rows[i].Name)
	}
	return rows, nil
}

// ParseProximities reads proximity rows from an uploaded spreadsheet.
func ParseProximities(r io.Reader) ([]ProximityRow, error) {
	var rows []ProximityRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse proximity csv: %w", err)
	}
	for i := range rows {
		rows[i].Room = strings.TrimSpace(rows[i].Room)
	}
	return rows, nil
}

// NeighborNames splits the semicolon-separated neighbor list, dropping
// blanks.
func (p ProximityRow) NeighborNames() []string {
	parts := strings.Split(p.Neighbors, ";")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
