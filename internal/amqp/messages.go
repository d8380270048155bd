package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventType names a change to the featured creators directory.
type EventType string

const (
	EventCreatorListed  EventType = "creator.listed"
	EventCreatorRemoved EventType = "creator.removed"
	// EventResync asks the mirror to rewrite everything, with no row attached.
	EventResync EventType = "directory.resync"
)

var ErrUnknownEvent = errors.New("unknown directory event type")

// DirectoryEvent tells the mirror worker that the directory changed. It
// carries only the row id; consumers re-read the store.
type DirectoryEvent struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"type"`
	CreatorID int64     `json:"creator_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDirectoryEvent(t EventType, creatorID int64) *DirectoryEvent {
	return &DirectoryEvent{
		EventID:   uuid.NewString(),
		Type:      t,
		CreatorID: creatorID,
		Timestamp: time.Now().UTC(),
	}
}

func (e *DirectoryEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// DirectoryEventFromJSON decodes and checks an event body.
func DirectoryEventFromJSON(data []byte) (*DirectoryEvent, error) {
	var e DirectoryEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	switch e.Type {
	case EventCreatorListed, EventCreatorRemoved, EventResync:
	default:
		return nil, ErrUnknownEvent
	}
	return &e, nil
}
