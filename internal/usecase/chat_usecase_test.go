package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/propledger/internal/chat"
	"github.com/iho/propledger/internal/domain"
	"github.com/iho/propledger/internal/usecase"
	"github.com/iho/propledger/internal/usecase/mocks"
)

type memoryMessages struct {
	mu   sync.Mutex
	rows map[string]domain.Message
}

func newMemoryMessages() *memoryMessages {
	return &memoryMessages{rows: make(map[string]domain.Message)}
}

func (r *memoryMessages) ListByPhone(_ context.Context, phone string, _ int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Message, 0)
	for _, m := range r.rows {
		if m.Phone == phone {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *memoryMessages) Save(_ context.Context, previousID string, msg domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if previousID != "" {
		delete(r.rows, previousID)
	}
	r.rows[msg.ID] = msg
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.MessageEvent
}

func (p *recordingPublisher) Publish(ev domain.MessageEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

type sequenceIDs struct {
	mu  sync.Mutex
	ids []string
}

func (g *sequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.ids[0]
	g.ids = g.ids[1:]
	return id
}

const testPhone = "+91 98765-43210"

func TestChat_SendThenEchoKeepsOneMessage(t *testing.T) {
	t.Parallel()

	repo := newMemoryMessages()
	pub := &recordingPublisher{}
	uc := usecase.NewChatUseCase(repo, &sequenceIDs{ids: []string{"local-1"}}, pub, nil)
	ctx := context.Background()

	sent, err := uc.Send(ctx, usecase.SendInput{Phone: testPhone, ClientID: "tmp-1", Body: "Rent reminder"})
	require.NoError(t, err)
	assert.Equal(t, "local-1", sent.ID)
	assert.Equal(t, "919876543210", sent.Phone)

	echo := domain.MessageEvent{
		Name: domain.EventMessageSent,
		Message: domain.Message{
			ID:     "wamid-1",
			AltID:  "tmp-1",
			Phone:  "919876543210",
			Status: domain.StatusDelivered,
		},
	}
	merged, changed, err := uc.ApplyEvent(ctx, echo)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "wamid-1", merged.ID)
	assert.Equal(t, domain.StatusDelivered, merged.Status)
	assert.Equal(t, "Rent reminder", merged.Body)

	msgs, err := uc.Messages(ctx, testPhone)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "wamid-1", msgs[0].ID)
	assert.Equal(t, 2, pub.count())
}

func TestChat_DuplicateEventIsNotPublished(t *testing.T) {
	t.Parallel()

	repo := newMemoryMessages()
	pub := &recordingPublisher{}
	m := newTestMetrics()
	uc := usecase.NewChatUseCase(repo, &sequenceIDs{}, pub, m)
	ctx := context.Background()

	ev := domain.MessageEvent{
		Name: domain.EventMessageReceived,
		Message: domain.Message{
			ID:        "in-1",
			Phone:     testPhone,
			Timestamp: date(2024, 3, 1),
			Direction: domain.DirectionInbound,
			Status:    domain.StatusDelivered,
			Body:      "Is the flat available?",
		},
	}

	_, changed, err := uc.ApplyEvent(ctx, ev)
	require.NoError(t, err)
	assert.True(t, changed)

	_, changed, err = uc.ApplyEvent(ctx, ev)
	require.NoError(t, err)
	assert.False(t, changed)

	assert.Equal(t, 1, pub.count())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChatEvents.WithLabelValues(domain.EventMessageReceived)))
}

func TestChat_StatusNeverMovesBackwards(t *testing.T) {
	t.Parallel()

	uc := usecase.NewChatUseCase(newMemoryMessages(), &sequenceIDs{}, nil, nil)
	ctx := context.Background()

	_, _, err := uc.ApplyEvent(ctx, domain.MessageEvent{
		Name:    domain.EventMessageSent,
		Message: domain.Message{ID: "m-1", Phone: testPhone, Timestamp: date(2024, 3, 1), Status: domain.StatusRead},
	})
	require.NoError(t, err)

	_, changed, err := uc.ApplyEvent(ctx, domain.MessageEvent{
		Name:    domain.EventMessageStatus,
		Message: domain.Message{ID: "m-1", Phone: testPhone, Status: domain.StatusDelivered},
	})
	require.NoError(t, err)
	assert.False(t, changed)

	msgs, err := uc.Messages(ctx, testPhone)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.StatusRead, msgs[0].Status)
}

func TestChat_StatusForUnknownMessageIsDropped(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMessageRepository(ctrl)
	repo.EXPECT().ListByPhone(gomock.Any(), "919876543210", usecase.ChatHistoryLimit).Return(nil, nil)
	pub := mocks.NewMockEventPublisher(ctrl)

	uc := usecase.NewChatUseCase(repo, &sequenceIDs{}, pub, nil)

	_, changed, err := uc.ApplyEvent(context.Background(), domain.MessageEvent{
		Name:    domain.EventMessageStatus,
		Message: domain.Message{ID: "missing", Phone: testPhone, Status: domain.StatusRead},
	})

	require.NoError(t, err)
	assert.False(t, changed)
}

func TestChat_Errors(t *testing.T) {
	t.Parallel()

	uc := usecase.NewChatUseCase(newMemoryMessages(), &sequenceIDs{ids: []string{"x"}}, nil, nil)
	ctx := context.Background()

	_, err := uc.Send(ctx, usecase.SendInput{Phone: testPhone, Body: "   "})
	assert.ErrorIs(t, err, domain.ErrEmptyMessage)

	_, err = uc.Messages(ctx, "12")
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)

	_, _, err = uc.ApplyEvent(ctx, domain.MessageEvent{
		Name:    "message:deleted",
		Message: domain.Message{ID: "m-1", Phone: testPhone},
	})
	assert.ErrorIs(t, err, domain.ErrUnknownEvent)
}

func TestChat_RepositoryError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	repo := mocks.NewMockMessageRepository(ctrl)
	dbErr := errors.New("db down")
	repo.EXPECT().ListByPhone(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, dbErr)

	uc := usecase.NewChatUseCase(repo, &sequenceIDs{}, nil, nil)

	_, err := uc.Messages(context.Background(), testPhone)
	assert.ErrorIs(t, err, dbErr)
}

func TestChat_DeliverDropsStaleEvents(t *testing.T) {
	t.Parallel()

	m := newTestMetrics()
	uc := usecase.NewChatUseCase(newMemoryMessages(), &sequenceIDs{}, nil, m)
	ctx := context.Background()
	inbox := chat.NewInbox()

	first, _, err := uc.Open(ctx, inbox, testPhone)
	require.NoError(t, err)
	second, _, err := uc.Open(ctx, inbox, "+44 20 7946 0000")
	require.NoError(t, err)

	ev := domain.MessageEvent{
		Name:    domain.EventMessageReceived,
		Message: domain.Message{ID: "in-9", Phone: testPhone, Timestamp: date(2024, 3, 2), Body: "late"},
	}

	_, _, err = uc.Deliver(inbox, first, ev)
	assert.ErrorIs(t, err, domain.ErrStaleConversation)

	_, _, err = uc.Deliver(inbox, second, ev)
	assert.ErrorIs(t, err, domain.ErrStaleConversation)

	assert.Empty(t, inbox.Messages())
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ChatStaleDropped))

	ev.Message.Phone = "442079460000"
	msg, changed, err := uc.Deliver(inbox, second, ev)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "in-9", msg.ID)
}
