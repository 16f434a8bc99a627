package core

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// RoomInfo is a read-only summary of a live room.
type RoomInfo struct {
	ID          RoomID
	MemberCount int
}

// JoinResult describes the membership transition performed by Rooms.Join.
type JoinResult struct {
	// Others holds the members present before the join, in join order.
	Others []ParticipantID
	// Added is false when the participant was already a member of the room.
	Added bool
	// From is the room the participant was re-homed out of, if Moved.
	From  RoomID
	Moved bool
}

// Rooms maps room ids to their ordered member sets. A participant belongs
// to at most one room. Rooms with no members are never stored.
type Rooms struct {
	mu      sync.RWMutex
	members map[RoomID][]ParticipantID
	roomOf  map[ParticipantID]RoomID
}

// NewRooms creates an empty membership table.
func NewRooms() *Rooms {
	return &Rooms{
		members: make(map[RoomID][]ParticipantID),
		roomOf:  make(map[ParticipantID]RoomID),
	}
}

// Join inserts pid into roomID, re-homing it out of any other room first.
// The returned snapshot is taken before insertion and excludes pid.
func (r *Rooms) Join(roomID RoomID, pid ParticipantID) JoinResult {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res JoinResult
	if current, ok := r.roomOf[pid]; ok && current != roomID {
		r.removeLocked(current, pid)
		res.From = current
		res.Moved = true
	}

	existing := r.members[roomID]
	res.Others = lo.Without(existing, pid)
	if !lo.Contains(existing, pid) {
		r.members[roomID] = append(existing, pid)
		r.roomOf[pid] = roomID
		res.Added = true
	}
	return res
}

// Leave removes pid from roomID and reports whether a removal happened.
func (r *Rooms) Leave(roomID RoomID, pid ParticipantID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.roomOf[pid]; !ok || current != roomID {
		return false
	}
	r.removeLocked(roomID, pid)
	return true
}

func (r *Rooms) removeLocked(roomID RoomID, pid ParticipantID) {
	delete(r.roomOf, pid)
	rest := lo.Without(r.members[roomID], pid)
	if len(rest) == 0 {
		delete(r.members, roomID)
		return
	}
	r.members[roomID] = rest
}

// FindRoomOf returns the room pid currently belongs to.
func (r *Rooms) FindRoomOf(pid ParticipantID) (RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	roomID, ok := r.roomOf[pid]
	return roomID, ok
}

// Members returns a copy of the member list of roomID in join order.
func (r *Rooms) Members(roomID RoomID) []ParticipantID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.members[roomID]
	out := make([]ParticipantID, len(members))
	copy(out, members)
	return out
}

// Exists reports whether roomID currently has members.
func (r *Rooms) Exists(roomID RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[roomID]
	return ok
}

// Len returns the number of live rooms.
func (r *Rooms) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// List returns all live rooms sorted by id.
func (r *Rooms) List() []RoomInfo {
	r.mu.RLock()
	out := lo.MapToSlice(r.members, func(id RoomID, members []ParticipantID) RoomInfo {
		return RoomInfo{ID: id, MemberCount: len(members)}
	})
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
