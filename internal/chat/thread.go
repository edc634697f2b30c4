// Package chat keeps conversation threads consistent while message events arrive out of order,
// duplicated, or for a conversation the client has already left.
package chat

import (
	"fmt"
	"sort"

	"github.com/iho/propledger/internal/domain"
)

// Thread is the ordered message list of one conversation.
type Thread struct {
	Phone    string
	Messages []domain.Message
}

// NewThread builds a thread from stored history, ordered by timestamp.
func NewThread(phone string, history []domain.Message) *Thread {
	msgs := make([]domain.Message, len(history))
	copy(msgs, history)
	t := &Thread{Phone: phone, Messages: msgs}
	t.sort()
	return t
}

// Apply merges an event into the thread. A message matching an existing one by id or alternate
// id is merged in place; otherwise it is inserted and the thread re-sorted by timestamp. A status
// update for an unknown message is dropped. The returned bool reports whether the thread changed.
func (t *Thread) Apply(ev domain.MessageEvent) (domain.Message, bool, error) {
	switch ev.Name {
	case domain.EventMessageSent, domain.EventMessageReceived, domain.EventMessageStatus:
	default:
		return domain.Message{}, false, fmt.Errorf("%w: %q", domain.ErrUnknownEvent, ev.Name)
	}

	in := ev.Message
	idx := t.find(in)

	if idx < 0 {
		if ev.Name == domain.EventMessageStatus {
			return domain.Message{}, false, nil
		}
		t.Messages = append(t.Messages, in)
		t.sort()
		return in, true, nil
	}

	merged, changed := merge(t.Messages[idx], in, ev.Name == domain.EventMessageStatus)
	if !changed {
		return merged, false, nil
	}
	t.Messages[idx] = merged
	t.sort()

	return merged, true, nil
}

// Lookup returns the stored message an incoming one would merge into.
func (t *Thread) Lookup(in domain.Message) (domain.Message, bool) {
	if idx := t.find(in); idx >= 0 {
		return t.Messages[idx], true
	}
	return domain.Message{}, false
}

// Snapshot returns a copy of the messages.
func (t *Thread) Snapshot() []domain.Message {
	out := make([]domain.Message, len(t.Messages))
	copy(out, t.Messages)
	return out
}

func (t *Thread) find(in domain.Message) int {
	for i, m := range t.Messages {
		if sameMessage(m, in) {
			return i
		}
	}
	return -1
}

func sameMessage(a, b domain.Message) bool {
	ids := func(m domain.Message) []string {
		out := make([]string, 0, 2)
		if m.ID != "" {
			out = append(out, m.ID)
		}
		if m.AltID != "" {
			out = append(out, m.AltID)
		}
		return out
	}

	for _, x := range ids(a) {
		for _, y := range ids(b) {
			if x == y {
				return true
			}
		}
	}
	return false
}

// merge folds in into cur. Status never moves backwards; an echo from the server replaces the
// optimistic id and keeps it as the alternate id.
func merge(cur, in domain.Message, statusOnly bool) (domain.Message, bool) {
	out := cur

	if in.Status.Rank() > cur.Status.Rank() {
		out.Status = in.Status
	}

	if !statusOnly {
		if in.ID != "" && in.ID != cur.ID {
			if out.AltID == "" || out.AltID == in.ID {
				out.AltID = cur.ID
			}
			out.ID = in.ID
		}
		if out.Body == "" {
			out.Body = in.Body
		}
		if !in.Timestamp.IsZero() && !in.Timestamp.Equal(cur.Timestamp) {
			out.Timestamp = in.Timestamp
		}
		if out.Direction == "" {
			out.Direction = in.Direction
		}
	}

	return out, out != cur
}

func (t *Thread) sort() {
	sort.SliceStable(t.Messages, func(i, j int) bool {
		return t.Messages[i].Timestamp.Before(t.Messages[j].Timestamp)
	})
}
