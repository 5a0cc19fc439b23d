package core

import (
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Theater/internal/domain"
)

// Notification vocabulary produced by a room. The `id` field
// discriminates messages on the wire; the signal adapter encodes
// events as-is. Participant payloads are value snapshots taken at
// commit time: write pumps marshal events after the room lock is
// gone, so an event must never alias live room state.

type RoomCreatedEvent struct {
	ID     string        `json:"id"`
	RoomID domain.RoomID `json:"roomId"`
}

func roomCreated(roomID domain.RoomID) RoomCreatedEvent {
	return RoomCreatedEvent{ID: "roomCreated", RoomID: roomID}
}

// UserEvent covers presence and role notices: newUser, userLeft,
// newAdmin, userInhibited, userUninhibited.
type UserEvent struct {
	ID   string             `json:"id"`
	User domain.Participant `json:"user"`
}

// ControlEvent carries playback control notices: paused, resumed.
type ControlEvent struct {
	ID        string             `json:"id"`
	Initiator domain.Participant `json:"initiator"`
}

type SeekEvent struct {
	ID          string             `json:"id"`
	Initiator   domain.Participant `json:"initiator"`
	NewPosition int64              `json:"newPosition"`
}

type SeekFailedEvent struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type VideoInfoEvent struct {
	ID           string `json:"id"`
	IsSeekable   bool   `json:"isSeekable"`
	InitSeekable int64  `json:"initSeekable"`
	EndSeekable  int64  `json:"endSeekable"`
	Duration     int64  `json:"videoDuration"`
}

func videoInfo(info PlaybackInfo) VideoInfoEvent {
	return VideoInfoEvent{
		ID:           "videoInfo",
		IsSeekable:   info.Seekable,
		InitSeekable: info.SeekStart,
		EndSeekable:  info.SeekEnd,
		Duration:     info.Duration,
	}
}

type PlayEndEvent struct {
	ID string `json:"id"`
}

type CandidateEvent struct {
	ID        string                  `json:"id"`
	Candidate webrtc.ICECandidateInit `json:"candidate"`
}
