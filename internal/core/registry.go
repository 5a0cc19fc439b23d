package core

import (
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Theater/internal/domain"
)

// Registry is the process-wide room table. It hands out per-room
// isolation: operations on unrelated rooms never contend here beyond
// the map access itself.
type Registry struct {
	engine MediaEngine

	mu    sync.RWMutex
	rooms map[domain.RoomID]*Room
}

func NewRegistry(engine MediaEngine) *Registry {
	return &Registry{
		engine: engine,
		rooms:  make(map[domain.RoomID]*Room),
	}
}

// Create opens the media source, builds a room around it with admin as
// the sole member, registers it and starts playback. On any failure
// nothing stays registered and all acquired handles are released.
func (g *Registry) Create(admin *Member, uri string) (*Room, error) {
	pipeline, err := g.engine.Open(uri)
	if err != nil {
		return nil, &MediaError{Op: "open", Err: err}
	}
	dist, err := pipeline.CreateDistributionPoint()
	if err != nil {
		pipeline.Release()
		return nil, &MediaError{Op: "create distribution point", Err: err}
	}

	room := newRoom(domain.RoomID(uuid.NewString()), pipeline, dist, g)
	pipeline.OnEndOfStream(room.playbackEnded)
	pipeline.OnError(func(err error) {
		log.Error().Str("module", "core.registry").Str("room", string(room.id)).
			Err(err).Msg("playback error")
		room.playbackEnded()
	})

	admin.meta.IsAdmin = true
	room.admin = admin
	if err := room.Join(admin); err != nil {
		admin.meta.IsAdmin = false
		room.admin = nil
		dist.Release()
		pipeline.Release()
		return nil, err
	}

	g.mu.Lock()
	g.rooms[room.id] = room
	g.mu.Unlock()

	if err := pipeline.Play(); err != nil {
		room.Leave(admin) // tears the empty room down and unregisters it
		return nil, &MediaError{Op: "play", Err: err}
	}

	log.Info().Str("module", "core.registry").Str("room", string(room.id)).
		Str("admin", admin.meta.Name).Str("uri", uri).Msg("room created")
	return room, nil
}

func (g *Registry) Get(id domain.RoomID) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	room, ok := g.rooms[id]
	return room, ok
}

// RoomInfo is a read-only view for APIs.
type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"memberCount"`
}

func (g *Registry) List() []RoomInfo {
	// Snapshot first: member counts take per-room locks and must not
	// be read while holding the registry lock.
	g.mu.RLock()
	rooms := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		rooms = append(rooms, r)
	}
	g.mu.RUnlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomInfo{ID: r.id, MemberCount: r.MemberCount()})
	}
	return out
}

// remove is idempotent; a destroyed room id never resolves again.
func (g *Registry) remove(id domain.RoomID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.rooms, id)
	log.Info().Str("module", "core.registry").Str("room", string(id)).Msg("room removed")
}
