package service

import (
	"context"
	"encoding/json"
	"errors"

	"notekeep-be/internal/dto"
	"notekeep-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService runs the order normalization jobs queued when a board is
// loaded with colliding display orders.
type consumerService struct {
	subscriber  message.Subscriber
	topicName   string
	noteService INoteService
	logger      logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	noteService INoteService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:  subscriber,
		topicName:   topicName,
		noteService: noteService,
		logger:      log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishNormalizeOrderMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // a malformed job never becomes valid
		return
	}

	userId, err := uuid.Parse(payload.UserId)
	if err != nil {
		cs.logger.Error("ConsumerService", "Invalid user id in job", map[string]interface{}{"user_id": payload.UserId})
		msg.Ack()
		return
	}

	changed, err := cs.noteService.NormalizeOrder(ctx, userId)
	if err != nil {
		if errors.Is(err, ErrReorderInProgress) {
			// the running reorder renumbers the touched sequence anyway
			cs.logger.Debug("ConsumerService", "Board busy, normalization skipped", map[string]interface{}{"user_id": userId})
			msg.Ack()
			return
		}
		// the next board load that still finds collisions queues a fresh job
		cs.logger.Error("ConsumerService", "Order normalization failed, job dropped", map[string]interface{}{"user_id": userId, "error": err.Error()})
		msg.Ack()
		return
	}

	cs.logger.Info("ConsumerService", "Order normalization done", map[string]interface{}{"user_id": userId, "changed": changed})
	msg.Ack()
}
