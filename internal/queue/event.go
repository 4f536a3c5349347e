// Package queue defines message payloads exchanged over the message broker
// and the consumer that records them.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// AttendanceQueue is the durable queue attendance changes are published to.
const AttendanceQueue = "attendance.changed"

// AttendanceChangedEvent is published after a user's attendance at a game
// has been stored.  It carries enough context for consumers to log or
// notify without querying the calendar database.
type AttendanceChangedEvent struct {
	EventID   string `json:"event_id"`
	UserID    uint64 `json:"user_id"`
	Username  string `json:"username"`
	GameID    uint64 `json:"game_id"`
	Season    int    `json:"season"`
	Opponents string `json:"opponents"`
	Direction string `json:"direction"` // attend | unattend
	Attended  bool   `json:"attended"`
	ChangedAt string `json:"changed_at"`
}

// NewAttendanceChangedEvent stamps a fresh event id and the current time.
func NewAttendanceChangedEvent(userID uint64, username string, gameID uint64, season int, opponents, direction string, attended bool) AttendanceChangedEvent {
	return AttendanceChangedEvent{
		EventID:   uuid.NewString(),
		UserID:    userID,
		Username:  username,
		GameID:    gameID,
		Season:    season,
		Opponents: opponents,
		Direction: direction,
		Attended:  attended,
		ChangedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
