package http

import (
	"context"

	"cordexplorer/pkg/contracts/domain"
)

// ExplorerServiceInterface defines the explorer operations the HTTP layer needs
type ExplorerServiceInterface interface {
	Bounds() domain.SliderBounds
	ResolveRange(from, to int) domain.YearRange
	Papers(r domain.YearRange) ([]domain.Paper, error)
	View(ctx context.Context, r domain.YearRange, transport string) (*domain.ExplorerView, error)
	RenderChart(ctx context.Context, name string, r domain.YearRange) ([]byte, error)
}
