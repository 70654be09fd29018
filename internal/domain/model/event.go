// Package model contains domain models passed between layers.
package model

import (
	"strconv"
	"time"
)

// UserID identifies a chat user. It is the partition key for every
// per-user record.
type UserID int64

func (u UserID) String() string { return strconv.FormatInt(int64(u), 10) }

// EventKind classifies an inbound event.
type EventKind string

// Inbound event kinds.
const (
	KindCommand EventKind = "command"
	KindText    EventKind = "text"
	KindButton  EventKind = "button"
	KindMedia   EventKind = "media"
)

// Event is one inbound interaction delivered by the chat transport.
type Event struct {
	ID         string // transport delivery id, used for duplicate suppression
	UserID     UserID
	ChatID     int64
	MessageID  int64 // message the button belongs to, or the user's message
	Kind       EventKind
	Payload    string // command name, message text or callback data
	CallbackID string // set for button presses
	MediaMIME  string // set for media; "audio/ogg" for voice notes
	MediaFile  string // transport file reference
	ReceivedAt time.Time
}
