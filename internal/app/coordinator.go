package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/core"
	"github.com/dkeye/Theater/internal/domain"
)

// Coordinator translates per-connection requests into room operations.
// It owns no room state itself; rooms are reached through the registry
// and members through the session registry.
type Coordinator struct {
	Sessions *SessionRegistry
	Rooms    *core.Registry
}

func NewCoordinator(rooms *core.Registry) *Coordinator {
	return &Coordinator{
		Sessions: NewSessionRegistry(),
		Rooms:    rooms,
	}
}

// CreateRoom builds a member for this session and opens a fresh room
// around it. The session is bound only after the room exists.
func (c *Coordinator) CreateRoom(sid core.SessionID, meta *domain.Participant, conn core.SignalConnection, uri string) (*core.Room, *core.Member, error) {
	member := core.NewMember(meta, conn)
	room, err := c.Rooms.Create(member, uri)
	if err != nil {
		return nil, nil, err
	}
	c.Sessions.Bind(sid, member)
	return room, member, nil
}

// Join attaches this session to an existing room.
func (c *Coordinator) Join(sid core.SessionID, meta *domain.Participant, conn core.SignalConnection, roomID domain.RoomID) (*core.Room, *core.Member, error) {
	room, ok := c.Rooms.Get(roomID)
	if !ok {
		return nil, nil, core.ErrRoomNotFound
	}
	member := core.NewMember(meta, conn)
	if err := room.Join(member); err != nil {
		return nil, nil, err
	}
	c.Sessions.Bind(sid, member)
	return room, member, nil
}

// MemberOf resolves the member bound to a session, if any.
func (c *Coordinator) MemberOf(sid core.SessionID) (*core.Member, bool) {
	return c.Sessions.Get(sid)
}

// RoomOf resolves the room a member currently belongs to.
func (c *Coordinator) RoomOf(m *core.Member) (*core.Room, bool) {
	id := m.RoomID()
	if id == "" {
		return nil, false
	}
	return c.Rooms.Get(id)
}

// Leave detaches the session from its room. It runs at most once per
// binding, whether triggered by an explicit stop or a transport close.
func (c *Coordinator) Leave(sid core.SessionID) {
	member, ok := c.Sessions.Unbind(sid)
	if !ok {
		return
	}
	room, ok := c.RoomOf(member)
	if !ok {
		return
	}
	if !room.Leave(member) {
		log.Warn().Str("module", "app.coordinator").Str("sid", string(sid)).
			Msg("leave for a member the room no longer holds")
	}
}
