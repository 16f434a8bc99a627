package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomsJoinReturnsPriorMembersInOrder(t *testing.T) {
	r := NewRooms()

	res := r.Join("room", "p1")
	require.Empty(t, res.Others)
	require.True(t, res.Added)

	r.Join("room", "p2")
	res = r.Join("room", "p3")
	require.Equal(t, []ParticipantID{"p1", "p2"}, res.Others)
	require.Equal(t, []ParticipantID{"p1", "p2", "p3"}, r.Members("room"))
}

func TestRoomsRejoinSameRoomIsNoop(t *testing.T) {
	r := NewRooms()
	r.Join("room", "p1")
	r.Join("room", "p2")

	res := r.Join("room", "p1")
	require.False(t, res.Added)
	require.False(t, res.Moved)
	require.Equal(t, []ParticipantID{"p2"}, res.Others)
	require.Equal(t, []ParticipantID{"p1", "p2"}, r.Members("room"))
}

func TestRoomsRehomeDeletesEmptiedRoom(t *testing.T) {
	r := NewRooms()
	r.Join("a", "p1")

	res := r.Join("b", "p1")
	require.True(t, res.Moved)
	require.Equal(t, RoomID("a"), res.From)
	require.False(t, r.Exists("a"))

	roomID, ok := r.FindRoomOf("p1")
	require.True(t, ok)
	require.Equal(t, RoomID("b"), roomID)
}

func TestRoomsLeaveDeletesEmptyRoom(t *testing.T) {
	r := NewRooms()
	r.Join("room", "p1")

	require.True(t, r.Leave("room", "p1"))
	require.False(t, r.Exists("room"))
	require.Zero(t, r.Len())

	_, ok := r.FindRoomOf("p1")
	require.False(t, ok)

	require.False(t, r.Leave("room", "p1"), "second leave is a no-op")
}

func TestRoomsLeaveWrongRoomIsNoop(t *testing.T) {
	r := NewRooms()
	r.Join("a", "p1")

	require.False(t, r.Leave("b", "p1"))
	require.True(t, r.Exists("a"))
	require.False(t, r.Exists("b"))
}

func TestRoomsListSortedByID(t *testing.T) {
	r := NewRooms()
	r.Join("zzz", "p1")
	r.Join("aaa", "p2")
	r.Join("aaa", "p3")

	require.Equal(t, []RoomInfo{
		{ID: "aaa", MemberCount: 2},
		{ID: "zzz", MemberCount: 1},
	}, r.List())
}

func TestRoomsMembersReturnsCopy(t *testing.T) {
	r := NewRooms()
	r.Join("room", "p1")

	members := r.Members("room")
	members[0] = "mutated"
	require.Equal(t, []ParticipantID{"p1"}, r.Members("room"))
}
