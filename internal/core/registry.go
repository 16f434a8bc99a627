package core

import "sync"

// DefaultDisplayName is used for participants that never supplied a name.
const DefaultDisplayName = "Guest"

// Registry is the bidirectional index between participants and their live
// connection. At most one connection per participant and at most one
// participant per connection is held at any instant.
type Registry struct {
	mu            sync.RWMutex
	byParticipant map[ParticipantID]Conn
	byConn        map[ConnID]ParticipantID
	names         map[ParticipantID]string
	defaultName   string
}

// NewRegistry creates an empty registry. An empty defaultName falls back to
// DefaultDisplayName.
func NewRegistry(defaultName string) *Registry {
	if defaultName == "" {
		defaultName = DefaultDisplayName
	}
	return &Registry{
		byParticipant: make(map[ParticipantID]Conn),
		byConn:        make(map[ConnID]ParticipantID),
		names:         make(map[ParticipantID]string),
		defaultName:   defaultName,
	}
}

// Bind records conn as the live connection of pid, overwriting whatever
// either side was bound to before.
func (r *Registry) Bind(pid ParticipantID, conn Conn) {
	id := conn.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byParticipant[pid]; ok && prev.ID() != id {
		delete(r.byConn, prev.ID())
	}
	if prevPID, ok := r.byConn[id]; ok && prevPID != pid {
		delete(r.byParticipant, prevPID)
	}
	r.byParticipant[pid] = conn
	r.byConn[id] = pid
}

// Resolve returns the live connection of pid.
func (r *Registry) Resolve(pid ParticipantID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byParticipant[pid]
	return conn, ok
}

// ResolveParticipant returns the participant bound to the connection id.
func (r *Registry) ResolveParticipant(id ConnID) (ParticipantID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pid, ok := r.byConn[id]
	return pid, ok
}

// Unbind removes both directions for the owner of id. Unknown ids are a no-op.
func (r *Registry) Unbind(id ConnID) (ParticipantID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pid, ok := r.byConn[id]
	if !ok {
		return "", false
	}
	delete(r.byConn, id)
	if conn, bound := r.byParticipant[pid]; bound && conn.ID() == id {
		delete(r.byParticipant, pid)
	}
	return pid, true
}

// SetDisplayName overwrites the label of pid. An empty name resets it to the
// default placeholder.
func (r *Registry) SetDisplayName(pid ParticipantID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		delete(r.names, pid)
		return
	}
	r.names[pid] = name
}

// DisplayName returns the label of pid or the default placeholder.
func (r *Registry) DisplayName(pid ParticipantID) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if name, ok := r.names[pid]; ok {
		return name
	}
	return r.defaultName
}

// ClearDisplayName forgets the label of pid.
func (r *Registry) ClearDisplayName(pid ParticipantID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.names, pid)
}

// Len returns the number of bound participants.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byParticipant)
}
