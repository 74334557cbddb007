package tour

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/primrose/internal/repositories"
	"github.com/Ramsey-B/primrose/pkg/database"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

const table = "tours"

var tourStruct = database.NewStruct(new(models.Tour))

// Repository handles tour persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) List(ctx context.Context) ([]models.Tour, error) {
	ctx, span := tracing.StartSpan(ctx, "tour.Repository.List")
	defer span.End()
	defer repositories.Observe("tour.list", time.Now())

	sb := tourStruct.SelectFrom(table)
	sb.OrderBy("id")

	query, args := sb.Build()
	tours := []models.Tour{}
	if err := r.db.SelectContext(ctx, &tours, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list tours")
		return nil, repositories.Internal("failed to list tours")
	}

	return tours, nil
}

func (r *Repository) Upsert(ctx context.Context, tour models.Tour) error {
	ctx, span := tracing.StartSpan(ctx, "tour.Repository.Upsert")
	defer span.End()
	defer repositories.Observe("tour.upsert", time.Now())

	ib := database.NewInsertBuilder()
	ib.InsertInto(table).
		Cols("id", "name", "location", "vendor_id", "created_at", "updated_at").
		Values(tour.ID, tour.Name, tour.Location, tour.VendorID, sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()")).
		OnConflictUpdate([]string{"id"}, "name", "location", "vendor_id", "updated_at")

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("tour_id", tour.ID).Error("Failed to upsert tour")
		return repositories.WriteError(err, "failed to upsert tour")
	}

	return nil
}
