package vendortour

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/primrose/internal/repositories"
	"github.com/Ramsey-B/primrose/pkg/database"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

const table = "vendor_tours"

var linkStruct = database.NewStruct(new(models.VendorTourLink))

// Repository handles vendor tour links. Links are insert-only.
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

func (r *Repository) Find(ctx context.Context, vendorID, tourID string) (*models.VendorTourLink, error) {
	ctx, span := tracing.StartSpan(ctx, "vendortour.Repository.Find")
	defer span.End()
	defer repositories.Observe("vendortour.find", time.Now())

	sb := linkStruct.SelectFrom(table)
	sb.Where(sb.Equal("vendor_id", vendorID), sb.Equal("tour_id", tourID))

	query, args := sb.Build()
	var link models.VendorTourLink
	err := r.db.GetContext(ctx, &link, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"vendor_id": vendorID,
			"tour_id":   tourID,
		}).Error("Failed to find vendor tour link")
		return nil, repositories.Internal("failed to find vendor tour link")
	}

	return &link, nil
}

// Insert creates the link. A pair that is already linked reports AlreadyExists.
func (r *Repository) Insert(ctx context.Context, vendorID, tourID string) (models.LinkOutcome, error) {
	ctx, span := tracing.StartSpan(ctx, "vendortour.Repository.Insert")
	defer span.End()
	defer repositories.Observe("vendortour.insert", time.Now())

	ib := database.NewInsertBuilder()
	ib.InsertInto(table).
		Cols("id", "vendor_id", "tour_id", "created_at").
		Values(uuid.New().String(), vendorID, tourID, sqlbuilder.Raw("NOW()")).
		OnConflictDoNothing()

	query, args := ib.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"vendor_id": vendorID,
			"tour_id":   tourID,
		}).Error("Failed to insert vendor tour link")
		return "", repositories.WriteError(err, "failed to insert vendor tour link")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return "", repositories.Internal("failed to insert vendor tour link")
	}
	if affected == 0 {
		return models.LinkAlreadyExists, nil
	}
	return models.LinkCreated, nil
}
