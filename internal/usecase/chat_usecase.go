package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/iho/propledger/internal/chat"
	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/infrastructure/metrics"
)

// ChatUseCase persists conversation threads and routes message events to open conversations.
type ChatUseCase struct {
	messages  MessageRepository
	idGen     IDGenerator
	publisher EventPublisher
	metrics   *metrics.Metrics

	// serializes read-merge-write of threads
	mu sync.Mutex
}

// NewChatUseCase creates a new ChatUseCase. publisher may be nil.
func NewChatUseCase(messages MessageRepository, idGen IDGenerator, publisher EventPublisher, m *metrics.Metrics) *ChatUseCase {
	return &ChatUseCase{
		messages:  messages,
		idGen:     idGen,
		publisher: publisher,
		metrics:   m,
	}
}

// SetPublisher wires the fan-out target after construction.
func (uc *ChatUseCase) SetPublisher(p EventPublisher) {
	uc.publisher = p
}

// Messages returns the stored thread of phone, oldest first.
func (uc *ChatUseCase) Messages(ctx context.Context, phone string) ([]domain.Message, error) {
	normalized, err := domain.NormalizePhone(phone)
	if err != nil {
		return nil, err
	}

	history, err := uc.messages.ListByPhone(ctx, normalized, ChatHistoryLimit)
	if err != nil {
		return nil, err
	}

	return chat.NewThread(normalized, history).Snapshot(), nil
}

// Open switches inbox to phone's conversation and returns the new generation with the history.
func (uc *ChatUseCase) Open(ctx context.Context, inbox *chat.Inbox, phone string) (uint64, []domain.Message, error) {
	history, err := uc.Messages(ctx, phone)
	if err != nil {
		return 0, nil, err
	}

	normalized, _ := domain.NormalizePhone(phone)
	gen := inbox.Open(normalized, history)

	return gen, inbox.Messages(), nil
}

// SendInput is an outbound message typed by a user.
type SendInput struct {
	Phone    string
	ClientID string
	Body     string
}

// Send records an outbound message. The client id of the optimistic copy is kept as the
// alternate id so the client can match the echo.
func (uc *ChatUseCase) Send(ctx context.Context, input SendInput) (domain.Message, error) {
	if strings.TrimSpace(input.Body) == "" {
		return domain.Message{}, domain.ErrEmptyMessage
	}

	msg, _, err := uc.ApplyEvent(ctx, domain.MessageEvent{
		Name: domain.EventMessageSent,
		Message: domain.Message{
			Timestamp: time.Now().UTC(),
			ID:        uc.idGen.Generate(),
			AltID:     input.ClientID,
			Phone:     input.Phone,
			Direction: domain.DirectionOutbound,
			Status:    domain.StatusSent,
			Body:      input.Body,
		},
	})

	return msg, err
}

// ApplyEvent merges an event into the stored thread of its phone, persists the result and
// publishes it. Duplicates and status updates for unknown messages change nothing and are not
// published.
func (uc *ChatUseCase) ApplyEvent(ctx context.Context, ev domain.MessageEvent) (domain.Message, bool, error) {
	phone, err := domain.NormalizePhone(ev.Message.Phone)
	if err != nil {
		return domain.Message{}, false, err
	}
	ev.Message.Phone = phone

	if ev.Message.ID == "" && ev.Message.AltID == "" {
		if ev.Name == domain.EventMessageStatus {
			return domain.Message{}, false, nil
		}
		ev.Message.ID = uc.idGen.Generate()
	}
	if ev.Message.Timestamp.IsZero() && ev.Name != domain.EventMessageStatus {
		ev.Message.Timestamp = time.Now().UTC()
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	history, err := uc.messages.ListByPhone(ctx, phone, ChatHistoryLimit)
	if err != nil {
		return domain.Message{}, false, err
	}

	thread := chat.NewThread(phone, history)
	previous, _ := thread.Lookup(ev.Message)

	merged, changed, err := thread.Apply(ev)
	if err != nil || !changed {
		return merged, false, err
	}

	previousID := ""
	if previous.ID != "" && previous.ID != merged.ID {
		previousID = previous.ID
	}
	if err := uc.messages.Save(ctx, previousID, merged); err != nil {
		return domain.Message{}, false, err
	}

	if uc.metrics != nil {
		uc.metrics.ChatEvents.WithLabelValues(ev.Name).Inc()
	}
	if uc.publisher != nil {
		uc.publisher.Publish(domain.MessageEvent{Name: ev.Name, Message: merged})
	}

	return merged, true, nil
}

// Deliver applies a published event to one client's inbox. Events for a conversation the
// client no longer has open are counted and reported as stale.
func (uc *ChatUseCase) Deliver(inbox *chat.Inbox, generation uint64, ev domain.MessageEvent) (domain.Message, bool, error) {
	msg, changed, err := inbox.Apply(generation, ev)
	if errors.Is(err, domain.ErrStaleConversation) && uc.metrics != nil {
		uc.metrics.ChatStaleDropped.Inc()
	}
	return msg, changed, err
}
