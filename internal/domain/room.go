package domain

// RoomID is the public handle of a watch room, generated at creation.
type RoomID string
