package service

import (
	"context"
	"fmt"
	"strings"

	"notekeep-be/internal/pkg/logger"
	"notekeep-be/pkg/events"
	pktNats "notekeep-be/pkg/nats"

	"github.com/google/uuid"
)

const syncMessageType = "note_event"

// BoardDelivery pushes a message to every open connection of a user.
// Implemented by the websocket hub.
type BoardDelivery interface {
	Send(userID uuid.UUID, msgType string, data interface{})
}

// SyncService relays committed board events from NATS to the owner's other
// devices.
type SyncService struct {
	subscriber *pktNats.Subscriber
	delivery   BoardDelivery
	logger     logger.ILogger
}

func NewSyncService(sub *pktNats.Subscriber, delivery BoardDelivery, log logger.ILogger) *SyncService {
	return &SyncService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *SyncService) Start(ctx context.Context) error {
	if err := s.subscriber.Subscribe(ctx, events.SubjectPrefix+">", "note-sync-worker", s.HandleEvent); err != nil {
		return fmt.Errorf("start note sync: %w", err)
	}
	s.logger.Info("SyncService", "Note sync started", nil)
	return nil
}

// HandleEvent forwards NOTE* events and ignores everything else on the stream.
func (s *SyncService) HandleEvent(ctx context.Context, event events.Event) error {
	eventType := strings.TrimPrefix(event.EventType(), events.SubjectPrefix)
	if !strings.HasPrefix(eventType, "NOTE") {
		return nil
	}

	payload := event.Payload()
	raw, _ := payload["user_id"].(string)
	userId, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("SyncService", "Event without a valid user_id", map[string]interface{}{"type": eventType})
		return nil
	}

	s.delivery.Send(userId, syncMessageType, map[string]interface{}{
		"type":        eventType,
		"payload":     payload,
		"occurred_at": event.Timestamp(),
	})
	return nil
}

// Publish relays event to local connections only. It stands in for the NATS
// publisher when the broker is unavailable, so a single instance still syncs
// the devices connected to it.
func (s *SyncService) Publish(ctx context.Context, event events.Event) error {
	return s.HandleEvent(ctx, event)
}
