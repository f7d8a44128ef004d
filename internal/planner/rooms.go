package planner

import "sort"

// RoomAllocator tracks room occupancy per (day, slot) and resolves
// capacity requests either with a single sufficient room or with a
// primary room plus proximity-linked neighbours.
type RoomAllocator struct {
	rooms     []Room
	neighbors map[string]map[string]struct{}
	occupied  map[slotKey]map[string]struct{}
}

// NewRoomAllocator establishes the deterministic room scan order once:
// capacity descending, room id ascending on ties.
func NewRoomAllocator(rooms []Room, pairs []ProximityPair) *RoomAllocator {
	ordered := make([]Room, len(rooms))
	copy(ordered, rooms)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Capacity != ordered[j].Capacity {
			return ordered[i].Capacity > ordered[j].Capacity
		}
		return ordered[i].ID < ordered[j].ID
	})

	neighbors := make(map[string]map[string]struct{})
	link := func(a, b string) {
		if neighbors[a] == nil {
			neighbors[a] = make(map[string]struct{})
		}
		neighbors[a][b] = struct{}{}
	}
	for _, pair := range pairs {
		if pair.A == "" || pair.B == "" || pair.A == pair.B {
			continue
		}
		link(pair.A, pair.B)
		link(pair.B, pair.A)
	}

	return &RoomAllocator{
		rooms:     ordered,
		neighbors: neighbors,
		occupied:  make(map[slotKey]map[string]struct{}),
	}
}

// FindAllocation selects rooms for the given slot and required
// capacity. It first scans for one sufficient free room, then falls
// back to a primary room plus one-hop proximate neighbours added
// greedily in the same capacity order. A negative result is normal and
// means the caller should try the next slot.
func (a *RoomAllocator) FindAllocation(day, slot, required int) ([]Room, bool) {
	taken := a.occupied[slotKey{Day: day, Slot: slot}]
	free := make([]Room, 0, len(a.rooms))
	for _, room := range a.rooms {
		if _, busy := taken[room.ID]; !busy {
			free = append(free, room)
		}
	}
	if len(free) == 0 {
		return nil, false
	}

	for _, room := range free {
		if room.Capacity >= required {
			return []Room{room}, true
		}
	}

	for _, primary := range free {
		linked := a.neighbors[primary.ID]
		if len(linked) == 0 {
			continue
		}
		allocation := []Room{primary}
		capacity := primary.Capacity
		for _, neighbor := range free {
			if neighbor.ID == primary.ID {
				continue
			}
			if _, ok := linked[neighbor.ID]; !ok {
				continue
			}
			allocation = append(allocation, neighbor)
			capacity += neighbor.Capacity
			if capacity >= required {
				return allocation, true
			}
		}
	}

	return nil, false
}

// Commit marks the rooms as occupied for the slot.
func (a *RoomAllocator) Commit(day, slot int, rooms []Room) {
	key := slotKey{Day: day, Slot: slot}
	taken, ok := a.occupied[key]
	if !ok {
		taken = make(map[string]struct{}, len(rooms))
		a.occupied[key] = taken
	}
	for _, room := range rooms {
		taken[room.ID] = struct{}{}
	}
}
