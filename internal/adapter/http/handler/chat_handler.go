package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/propledger/internal/adapter/http/dto"
	"github.com/iho/propledger/internal/domain"
)

// ChatService reads and updates conversation threads.
type ChatService interface {
	Messages(ctx context.Context, phone string) ([]domain.Message, error)
	ApplyEvent(ctx context.Context, ev domain.MessageEvent) (domain.Message, bool, error)
}

// ChatHandler handles chat history and provider webhooks.
type ChatHandler struct {
	chat ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chat ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Messages returns the thread of a phone number, oldest first.
// The newest messages are kept when limit cuts the thread.
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	limit, offset, err := domain.ValidatePagination(
		parseIntQuery(r, "limit", 0),
		parseIntQuery(r, "offset", 0),
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pagination", err.Error())
		return
	}

	msgs, err := h.chat.Messages(r.Context(), phone)
	if err != nil {
		writeDomainError(w, r, "failed to load messages", err)
		return
	}

	normalized, _ := domain.NormalizePhone(phone)
	writeJSON(w, http.StatusOK, dto.MessagesResponse{
		Phone:    normalized,
		Messages: tail(msgs, limit, offset),
	})
}

// Events applies a message event delivered by the messaging provider.
func (h *ChatHandler) Events(w http.ResponseWriter, r *http.Request) {
	var ev domain.MessageEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	msg, changed, err := h.chat.ApplyEvent(r.Context(), ev)
	if err != nil {
		writeDomainError(w, r, "failed to apply event", err)
		return
	}

	if !changed {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusAccepted, msg)
}

// tail returns up to limit messages ending offset messages before the newest.
func tail(msgs []domain.Message, limit, offset int) []domain.Message {
	end := len(msgs) - offset
	if end <= 0 {
		return []domain.Message{}
	}
	start := end - limit
	if start < 0 {
		start = 0
	}
	return msgs[start:end]
}
