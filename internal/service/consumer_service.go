package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-bizchat-be/internal/pkg/logger"
	"ai-bizchat-be/internal/pkg/mailer"
	"ai-bizchat-be/pkg/chat/lead"
	"ai-bizchat-be/pkg/events"
	natspub "ai-bizchat-be/pkg/nats"
)

const moduleConsumer = "lead_consumer"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains LEAD_CAPTURED events: it emails the business and
// forwards the event to NATS for external CRM consumers. Neither path is
// retried; failures are logged with the full lead so nothing is silently lost.
type consumerService struct {
	pubSub       *gochannel.GoChannel
	log          logger.ILogger
	emailService mailer.IEmailService
	natsPub      *natspub.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	log logger.ILogger,
	emailService mailer.IEmailService,
	natsPub *natspub.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		log:          log,
		emailService: emailService,
		natsPub:      natsPub,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, events.LeadCaptured)
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
	var payload struct {
		SessionKey string `json:"session_key"`
		Name       string `json:"name"`
		Phone      string `json:"phone"`
		Email      string `json:"email"`
		RawText    string `json:"raw_text"`
		Language   string `json:"language"`
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error(moduleConsumer, "unparseable lead payload", map[string]interface{}{"error": err.Error()})
		// Ack malformed messages, retrying cannot fix them.
		msg.Ack()
		return
	}

	body := lead.FormatNotification(lead.Record{
		Name:    payload.Name,
		Phone:   payload.Phone,
		Email:   payload.Email,
		RawText: payload.RawText,
	})
	subject := "New lead: " + orUnknown(payload.Name)

	// Delivery failure is logged, not retried; the raw lead text survives in
	// the log for manual follow-up.
	if err := cs.emailService.SendLeadNotification(subject, body); err != nil {
		cs.log.Error(moduleConsumer, "lead email failed", map[string]interface{}{
			"error":   err.Error(),
			"session": payload.SessionKey,
			"lead":    string(msg.Payload),
		})
	} else {
		cs.log.Info(moduleConsumer, "lead email sent", map[string]interface{}{"session": payload.SessionKey})
	}

	if cs.natsPub != nil {
		evt := events.NewLeadCaptured(payload.SessionKey, payload.Name, payload.Phone, payload.Email, payload.RawText, payload.Language)
		pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := cs.natsPub.Publish(pubCtx, evt); err != nil {
			cs.log.Warn(moduleConsumer, "nats forward failed", map[string]interface{}{"error": err.Error()})
		}
		cancel()
	}

	msg.Ack()
}

func orUnknown(name string) string {
	if name == "" {
		return "unknown contact"
	}
	return name
}
