package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/adigart/adigart-backend/internal/access"
	"github.com/adigart/adigart-backend/internal/transactions"
	"github.com/adigart/adigart-backend/pkg/config"
	pkgerrors "github.com/adigart/adigart-backend/pkg/errors"
	"github.com/adigart/adigart-backend/pkg/logger"
	"github.com/adigart/adigart-backend/pkg/pagination"
)

// Service answers the read-side questions: how a project is doing, what
// moved, and a CSV of the whole log for the bookkeeper.
type Service interface {
	ProjectSummary(ctx context.Context, actor access.Actor, projectID uuid.UUID) (*ProjectSummaryDTO, error)
	History(ctx context.Context, actor access.Actor, projectID uuid.UUID, params HistoryParams) (*HistoryPage, error)
	ExportCSV(ctx context.Context, actor access.Actor, projectID uuid.UUID, w io.Writer) error
}

type service struct {
	repo   *Repository
	access *access.Service
	log    *logger.Logger
	loc    *time.Location
}

// NewService builds the reporting service. The export timezone falls back to
// UTC when the configured zone cannot be loaded.
func NewService(repo *Repository, accessSvc *access.Service, log *logger.Logger, cfg config.ExportConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	if accessSvc == nil {
		return nil, fmt.Errorf("access service required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}
	return &service{repo: repo, access: accessSvc, log: log, loc: loc}, nil
}

// ProjectSummary aggregates the project's movements. A failing read degrades
// to an all-zero summary rather than breaking the dashboard.
func (s *service) ProjectSummary(ctx context.Context, actor access.Actor, projectID uuid.UUID) (*ProjectSummaryDTO, error) {
	if err := s.access.RequireProjectAccess(ctx, actor, projectID); err != nil {
		return nil, err
	}

	summary := &ProjectSummaryDTO{ProjectID: projectID, Products: []ProductQuantityDTO{}}
	row, err := s.repo.Summary(ctx, projectID)
	if err != nil {
		s.log.Error(ctx, "summary aggregation failed, serving zeros", err)
		return summary, nil
	}

	summary.TotalRevenue = row.TotalRevenue
	summary.CashRevenue = row.CashRevenue
	summary.CardRevenue = row.CardRevenue
	summary.SalesCount = row.SalesCount
	summary.GiftsCount = row.GiftsCount
	summary.QuantitySold = row.QuantitySold

	products, err := s.repo.ProductBreakdown(ctx, projectID)
	if err != nil {
		s.log.Error(ctx, "product breakdown failed, serving totals only", err)
		return summary, nil
	}
	summary.Products = products
	return summary, nil
}

// History pages through the project's movements, newest first.
func (s *service) History(ctx context.Context, actor access.Actor, projectID uuid.UUID, params HistoryParams) (*HistoryPage, error) {
	if err := s.access.RequireProjectAccess(ctx, actor, projectID); err != nil {
		return nil, err
	}
	if params.Type != nil && !params.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type filter")
	}

	cursor, err := pagination.ParseCursor(params.Pagination.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Pagination.Limit)
	rows, err := s.repo.HistoryPage(ctx, projectID, params, cursor, pagination.LimitWithBuffer(params.Pagination.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: history page")
	}

	page := &HistoryPage{Items: make([]transactions.TransactionDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		page.Items = append(page.Items, *transactions.NewTransactionDTO(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// ExportCSV writes the project's full movement log to w.
func (s *service) ExportCSV(ctx context.Context, actor access.Actor, projectID uuid.UUID, w io.Writer) error {
	if err := s.access.RequireProjectAccess(ctx, actor, projectID); err != nil {
		return err
	}

	rows, err := s.repo.ExportRows(ctx, projectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: export rows")
	}
	if err := writeCSV(w, rows, s.loc); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write csv")
	}
	return nil
}
