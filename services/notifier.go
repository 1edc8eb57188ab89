package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/Dosada05/competition-brackets/broadcast"
	"github.com/Dosada05/competition-brackets/models"
)

const publishTimeout = 3 * time.Second

// notifier sends events after the transaction committed. Failures are
// logged and never reach the caller.
type notifier struct {
	publisher broadcast.Publisher
	logger    *slog.Logger
}

func (n notifier) publish(ctx context.Context, events ...models.Event) {
	if n.publisher == nil || len(events) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, event := range events {
		if err := n.publisher.Publish(ctx, event); err != nil {
			n.logger.Warn("failed to publish event",
				slog.String("type", string(event.Type)),
				slog.Int("competition_id", event.CompetitionID),
				slog.Any("error", err))
		}
	}
}

func matchEvent(b *models.Bracket, m *models.Match, actor models.Actor) models.Event {
	e := models.NewEvent(models.EventMatchUpdate, b.CompetitionID, actor)
	bracketID, matchID := b.ID, m.ID
	e.BracketID = &bracketID
	e.MatchID = &matchID
	e.Status = string(m.Status)
	e.Payload = m
	return e
}

func bracketEvent(eventType models.EventType, b *models.Bracket, status string, actor models.Actor) models.Event {
	e := models.NewEvent(eventType, b.CompetitionID, actor)
	bracketID := b.ID
	e.BracketID = &bracketID
	e.Status = status
	e.Payload = b
	return e
}

func resultEvent(b *models.Bracket, records []*models.ResultRecord, actor models.Actor) models.Event {
	e := models.NewEvent(models.EventResultUpdate, b.CompetitionID, actor)
	bracketID := b.ID
	e.BracketID = &bracketID
	e.Payload = records
	return e
}
