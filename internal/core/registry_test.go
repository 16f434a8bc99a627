package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryBindAndResolve(t *testing.T) {
	r := NewRegistry("")
	c1 := newFakeConn("c1")

	r.Bind("p1", c1)

	conn, ok := r.Resolve("p1")
	require.True(t, ok)
	require.Equal(t, ConnID("c1"), conn.ID())

	pid, ok := r.ResolveParticipant("c1")
	require.True(t, ok)
	require.Equal(t, ParticipantID("p1"), pid)
}

func TestRegistryReconnectDropsOldConnection(t *testing.T) {
	r := NewRegistry("")
	r.Bind("p1", newFakeConn("c1"))
	r.Bind("p1", newFakeConn("c2"))

	_, ok := r.ResolveParticipant("c1")
	require.False(t, ok, "old connection must lose its reverse mapping")

	conn, ok := r.Resolve("p1")
	require.True(t, ok)
	require.Equal(t, ConnID("c2"), conn.ID())
	require.Equal(t, 1, r.Len())

	// Unbinding the stale connection must not touch the live one.
	_, ok = r.Unbind("c1")
	require.False(t, ok)
	_, ok = r.Resolve("p1")
	require.True(t, ok)
}

func TestRegistryRebindConnectionToOtherParticipant(t *testing.T) {
	r := NewRegistry("")
	c1 := newFakeConn("c1")
	r.Bind("p1", c1)
	r.Bind("p2", c1)

	_, ok := r.Resolve("p1")
	require.False(t, ok)
	pid, ok := r.ResolveParticipant("c1")
	require.True(t, ok)
	require.Equal(t, ParticipantID("p2"), pid)
	require.Equal(t, 1, r.Len())
}

func TestRegistryUnbindIsIdempotent(t *testing.T) {
	r := NewRegistry("")
	r.Bind("p1", newFakeConn("c1"))

	pid, ok := r.Unbind("c1")
	require.True(t, ok)
	require.Equal(t, ParticipantID("p1"), pid)

	_, ok = r.Unbind("c1")
	require.False(t, ok)
	_, ok = r.Unbind("never-seen")
	require.False(t, ok)
	require.Zero(t, r.Len())
}

func TestRegistryDisplayNames(t *testing.T) {
	r := NewRegistry("")
	require.Equal(t, DefaultDisplayName, r.DisplayName("p1"))

	r.SetDisplayName("p1", "Alice")
	r.SetDisplayName("p1", "Alicia")
	require.Equal(t, "Alicia", r.DisplayName("p1"))

	r.SetDisplayName("p1", "")
	require.Equal(t, DefaultDisplayName, r.DisplayName("p1"), "empty name falls back to the placeholder")

	r.SetDisplayName("p1", "Alicia")
	r.ClearDisplayName("p1")
	require.Equal(t, DefaultDisplayName, r.DisplayName("p1"))

	custom := NewRegistry("Anonymous")
	require.Equal(t, "Anonymous", custom.DisplayName("p1"))
}
