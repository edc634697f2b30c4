package chat

import (
	"fmt"
	"sync"

	"github.com/iho/propledger/internal/domain"
)

// Inbox tracks the conversation a client currently has open. Each Open starts a new generation;
// events tagged with an older generation or addressed to another phone are discarded.
type Inbox struct {
	mu         sync.Mutex
	generation uint64
	thread     *Thread
}

// NewInbox creates an inbox with no conversation open.
func NewInbox() *Inbox {
	return &Inbox{}
}

// Open switches to phone's conversation seeded with its stored history and returns the new
// generation.
func (b *Inbox) Open(phone string, history []domain.Message) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.generation++
	b.thread = NewThread(phone, history)
	return b.generation
}

// Active returns the open phone and generation. The phone is empty before the first Open.
func (b *Inbox) Active() (string, uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.thread == nil {
		return "", b.generation
	}
	return b.thread.Phone, b.generation
}

// Apply merges an event into the open thread if it still belongs there.
func (b *Inbox) Apply(generation uint64, ev domain.MessageEvent) (domain.Message, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.thread == nil || generation != b.generation {
		return domain.Message{}, false, fmt.Errorf("%w: generation %d", domain.ErrStaleConversation, generation)
	}
	if !SamePhone(ev.Message.Phone, b.thread.Phone) {
		return domain.Message{}, false, fmt.Errorf("%w: phone %s", domain.ErrStaleConversation, ev.Message.Phone)
	}

	return b.thread.Apply(ev)
}

// Messages returns a copy of the open thread.
func (b *Inbox) Messages() []domain.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.thread == nil {
		return []domain.Message{}
	}
	return b.thread.Snapshot()
}

// SamePhone compares two phone numbers by their digits.
func SamePhone(a, b string) bool {
	na, errA := domain.NormalizePhone(a)
	nb, errB := domain.NormalizePhone(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return na == nb
}
