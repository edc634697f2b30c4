package handler

import (
	"context"
	"net/http"

	"github.com/iho/propledger/internal/layout"
)

// LayoutService groups properties into buildings and floors.
type LayoutService interface {
	Layout(ctx context.Context) (*layout.Layout, error)
}

// LayoutHandler handles property layout requests.
type LayoutHandler struct {
	layouts LayoutService
}

// NewLayoutHandler creates a new LayoutHandler.
func NewLayoutHandler(layouts LayoutService) *LayoutHandler {
	return &LayoutHandler{layouts: layouts}
}

// Get returns the building/floor/unit grouping of every property.
func (h *LayoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	l, err := h.layouts.Layout(r.Context())
	if err != nil {
		writeDomainError(w, r, "failed to load layout", err)
		return
	}

	writeJSON(w, http.StatusOK, l)
}
