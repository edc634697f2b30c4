package usecase

import (
	"context"
	"fmt"

	"github.com/iho/propledger/internal/layout"
)

// LayoutUseCase builds the building map of all properties.
type LayoutUseCase struct {
	snapshots *SnapshotLoader
}

// NewLayoutUseCase creates a new LayoutUseCase.
func NewLayoutUseCase(snapshots *SnapshotLoader) *LayoutUseCase {
	return &LayoutUseCase{snapshots: snapshots}
}

// Layout groups every property by parsed building and floor.
func (uc *LayoutUseCase) Layout(ctx context.Context) (*layout.Layout, error) {
	snapshot, err := uc.snapshots.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	l := layout.Group(snapshot.Properties)
	return &l, nil
}
