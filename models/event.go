package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventMatchUpdate    EventType = "match:update"
	EventBracketUpdate  EventType = "bracket:update"
	EventBracketCreated EventType = "bracket:created"
	EventResultUpdate   EventType = "result:update"
)

// Event is what subscribers of a competition receive. Delivery is best effort,
// clients re-fetch state after reconnecting.
type Event struct {
	ID            uuid.UUID   `json:"id"`
	Type          EventType   `json:"type"`
	CompetitionID int         `json:"competition_id"`
	BracketID     *int        `json:"bracket_id,omitempty"`
	MatchID       *int        `json:"match_id,omitempty"`
	Status        string      `json:"status,omitempty"`
	ActorID       *int        `json:"actor_id,omitempty"`
	OccurredAt    time.Time   `json:"occurred_at"`
	Payload       interface{} `json:"payload,omitempty"`
}

func NewEvent(eventType EventType, competitionID int, actor Actor) Event {
	e := Event{
		ID:            uuid.New(),
		Type:          eventType,
		CompetitionID: competitionID,
		OccurredAt:    time.Now().UTC(),
	}
	if actor.UserID != 0 {
		id := actor.UserID
		e.ActorID = &id
	}
	return e
}
