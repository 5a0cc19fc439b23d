package core

import (
	"math/rand/v2"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/domain"
)

// destroyer is what a room needs from its registry: removal of its
// own entry once the last member has left.
type destroyer interface {
	remove(domain.RoomID)
}

// Room is one shared-playback session: a single media source, an
// ordered member list and exactly one admin while non-empty.
//
// Every mutating operation and every call into room-owned media
// handles runs under mu. Notification delivery inside the lock is a
// non-blocking enqueue on the recipient's send channel, so the lock
// is never held across network I/O and per-recipient ordering follows
// commit order.
type Room struct {
	id domain.RoomID

	mu        sync.Mutex
	members   []*Member // join order
	admin     *Member
	pipeline  Pipeline
	dist      DistributionPoint
	destroyed bool

	reg destroyer
}

func newRoom(id domain.RoomID, pipeline Pipeline, dist DistributionPoint, reg destroyer) *Room {
	return &Room{id: id, pipeline: pipeline, dist: dist, reg: reg}
}

func (r *Room) ID() domain.RoomID { return r.id }

func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Admin returns the meta of the current admin, or nil during the
// zero-member transient before destruction.
func (r *Room) Admin() *domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.admin == nil {
		return nil
	}
	return r.admin.meta
}

// MembersSnapshot is a read-only view for APIs.
func (r *Room) MembersSnapshot() []domain.Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Participant, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, *m.meta)
	}
	return out
}

func (r *Room) findByName(name string) *Member {
	for _, m := range r.members {
		if m.meta.Name == name {
			return m
		}
	}
	return nil
}

// send enqueues one event for one recipient. Delivery failures are a
// transport concern: logged and skipped, never propagated.
func (r *Room) send(to *Member, v any) {
	if err := to.signal.TrySend(v); err != nil {
		log.Warn().Str("module", "core.room").Str("room", string(r.id)).
			Str("to", to.meta.Name).Err(err).Msg("notification dropped")
	}
}

// broadcast fans out to every current member except skip. Exclusion is
// by member identity, not by name.
func (r *Room) broadcast(skip *Member, v any) {
	for _, m := range r.members {
		if m == skip {
			continue
		}
		r.send(m, v)
	}
}

// Join adds a validated member to the room. On a name conflict or a
// media failure nothing is left behind: the member stays un-joined.
func (r *Room) Join(m *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.destroyed {
		return ErrRoomDestroyed
	}
	if r.findByName(m.meta.Name) != nil {
		return ErrDuplicateName
	}

	ep, err := r.pipeline.AttachEndpoint()
	if err != nil {
		return &MediaError{Op: "attach endpoint", Err: err}
	}
	tap, err := r.dist.OpenTap()
	if err != nil {
		ep.Release()
		return &MediaError{Op: "open tap", Err: err}
	}
	if err := tap.Connect(ep); err != nil {
		tap.Release()
		ep.Release()
		return &MediaError{Op: "connect tap", Err: err}
	}

	m.endpoint = ep
	m.tap = tap
	m.roomID = r.id

	// Candidates go to the owning connection only; the connected
	// callback re-enters the room for a fresh playback snapshot.
	ep.OnICECandidate(func(c webrtc.ICECandidateInit) {
		r.send(m, CandidateEvent{ID: "iceCandidate", Candidate: c})
	})
	ep.OnConnected(func() { r.notifyPlaybackInfo(m) })

	// Existing members learn about the newcomer; the newcomer's view
	// is seeded with one notice per existing member so it does not
	// depend on broadcast order.
	r.broadcast(nil, UserEvent{ID: "newUser", User: *m.meta})
	for _, other := range r.members {
		r.send(m, UserEvent{ID: "newUser", User: *other.meta})
	}
	r.members = append(r.members, m)

	r.send(m, roomCreated(r.id))
	if info, err := r.pipeline.PlaybackInfo(); err == nil {
		r.send(m, videoInfo(info))
	} else {
		log.Error().Str("module", "core.room").Str("room", string(r.id)).
			Err(err).Msg("playback info unavailable on join")
	}

	log.Info().Str("module", "core.room").Str("room", string(r.id)).
		Str("name", m.meta.Name).Int("members", len(r.members)).Msg("member joined")
	return nil
}

// Leave removes a member, releasing its media handles. Removing a
// non-member is a no-op returning false. The last leave releases the
// room's media handles and unregisters the room, exactly once.
func (r *Room) Leave(m *Member) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i, cur := range r.members {
		if cur == m {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	r.members = append(r.members[:idx], r.members[idx+1:]...)

	m.tap.Release()
	m.endpoint.Release()
	m.tap = nil
	m.endpoint = nil
	m.roomID = ""

	r.broadcast(nil, UserEvent{ID: "userLeft", User: *m.meta})

	if len(r.members) == 0 {
		r.destroyed = true
		r.admin = nil
		r.dist.Release()
		r.pipeline.Release()
		r.reg.remove(r.id)
		log.Info().Str("module", "core.room").Str("room", string(r.id)).Msg("room destroyed")
		return true
	}

	if r.admin == m {
		next := r.members[rand.IntN(len(r.members))]
		r.setAdminLocked(next)
	}

	log.Info().Str("module", "core.room").Str("room", string(r.id)).
		Str("name", m.meta.Name).Int("members", len(r.members)).Msg("member left")
	return true
}

func (r *Room) setAdminLocked(next *Member) {
	if r.admin != nil {
		r.admin.meta.IsAdmin = false
	}
	r.admin = next
	next.meta.IsAdmin = true
	r.broadcast(nil, UserEvent{ID: "newAdmin", User: *next.meta})
	log.Info().Str("module", "core.room").Str("room", string(r.id)).
		Str("name", next.meta.Name).Msg("new admin")
}

// TransferAdmin hands admin control to the named member. Only the
// current admin may do this.
func (r *Room) TransferAdmin(initiator *Member, targetName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !initiator.meta.IsAdmin {
		return ErrNotAdmin
	}
	target := r.findByName(targetName)
	if target == nil {
		return ErrMemberNotFound
	}
	if target != r.admin {
		r.setAdminLocked(target)
	}
	return nil
}

// SetInhibited flips the target's control rights. Admin-only; the
// notice goes to every member, target and initiator included.
func (r *Room) SetInhibited(initiator *Member, targetName string, inhibited bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !initiator.meta.IsAdmin {
		return ErrNotAdmin
	}
	target := r.findByName(targetName)
	if target == nil {
		return ErrMemberNotFound
	}
	target.meta.Inhibited = inhibited

	op := "userUninhibited"
	if inhibited {
		op = "userInhibited"
	}
	r.broadcast(nil, UserEvent{ID: op, User: *target.meta})
	return nil
}

// Pause halts playback for the whole room. Everyone except the
// initiator is notified; the initiator asked for it.
func (r *Room) Pause(initiator *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if initiator.meta.Inhibited {
		return ErrInhibited
	}
	if err := r.pipeline.Pause(); err != nil {
		return &MediaError{Op: "pause", Err: err}
	}
	r.broadcast(initiator, ControlEvent{ID: "paused", Initiator: *initiator.meta})
	return nil
}

func (r *Room) Resume(initiator *Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if initiator.meta.Inhibited {
		return ErrInhibited
	}
	if err := r.pipeline.Resume(); err != nil {
		return &MediaError{Op: "resume", Err: err}
	}
	r.broadcast(initiator, ControlEvent{ID: "resumed", Initiator: *initiator.meta})
	return nil
}

// Seek repositions playback. Other members only learn of a seek once
// it has succeeded; a failed seek is reported to the initiator alone
// and changes nothing.
func (r *Room) Seek(initiator *Member, position int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if initiator.meta.Inhibited {
		return ErrInhibited
	}
	if err := r.pipeline.Seek(position); err != nil {
		log.Debug().Str("module", "core.room").Str("room", string(r.id)).
			Int64("position", position).Err(err).Msg("seek failed")
		r.send(initiator, SeekFailedEvent{ID: "seekFailed", Message: "Seek failed"})
		return nil
	}
	r.broadcast(initiator, SeekEvent{ID: "seek", Initiator: *initiator.meta, NewPosition: position})
	return nil
}

// Position reads the current playback position for one requester.
func (r *Room) Position() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pos, err := r.pipeline.Position()
	if err != nil {
		return 0, &MediaError{Op: "position", Err: err}
	}
	return pos, nil
}

// PlaybackInfo reads the current seekability snapshot.
func (r *Room) PlaybackInfo() (PlaybackInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := r.pipeline.PlaybackInfo()
	if err != nil {
		return PlaybackInfo{}, &MediaError{Op: "playback info", Err: err}
	}
	return info, nil
}

// notifyPlaybackInfo re-sends the playback snapshot to one member.
// Runs on collaborator goroutines, hence the lock.
func (r *Room) notifyPlaybackInfo(m *Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	info, err := r.pipeline.PlaybackInfo()
	if err != nil {
		return
	}
	r.send(m, videoInfo(info))
}

// playbackEnded handles collaborator end-of-stream and error events.
func (r *Room) playbackEnded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destroyed {
		return
	}
	r.broadcast(nil, PlayEndEvent{ID: "playEnd"})
}
