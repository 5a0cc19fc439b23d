package core

import "github.com/dkeye/Theater/internal/domain"

// Member binds a validated participant to its transport endpoint and,
// once joined, to its media handles. Both handles are set together by
// Room.Join and cleared together by Room.Leave; other components never
// observe a half-wired member.
type Member struct {
	meta   *domain.Participant
	signal SignalConnection

	// Guarded by the owning room's lock while joined.
	endpoint Endpoint
	tap      Tap
	roomID   domain.RoomID
}

func NewMember(meta *domain.Participant, signal SignalConnection) *Member {
	return &Member{meta: meta, signal: signal}
}

func (m *Member) Meta() *domain.Participant { return m.meta }
func (m *Member) Signal() SignalConnection  { return m.signal }

// Endpoint is non-nil exactly while the member is joined.
func (m *Member) Endpoint() Endpoint { return m.endpoint }

// RoomID returns the room this member belongs to, or "" when un-joined.
func (m *Member) RoomID() domain.RoomID { return m.roomID }
