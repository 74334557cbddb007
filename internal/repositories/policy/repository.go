package policy

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/primrose/internal/repositories"
	"github.com/Ramsey-B/primrose/pkg/database"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

const table = "cancellation_policies"

var (
	policyStruct = database.NewStruct(new(models.CancellationPolicyRecord))
	columns      = []string{"id", "vendor_id", "tour_id", "cancellation_before_minutes", "created_at", "updated_at"}
)

// Repository handles cancellation policy persistence
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

func (r *Repository) FindByPair(ctx context.Context, vendorID, tourID string) (*models.CancellationPolicyRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "policy.Repository.FindByPair")
	defer span.End()
	defer repositories.Observe("policy.find", time.Now())

	sb := policyStruct.SelectFrom(table)
	sb.Where(sb.Equal("vendor_id", vendorID), sb.Equal("tour_id", tourID))

	query, args := sb.Build()
	var rec models.CancellationPolicyRecord
	err := r.db.GetContext(ctx, &rec, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"vendor_id": vendorID,
			"tour_id":   tourID,
		}).Error("Failed to find cancellation policy")
		return nil, repositories.Internal("failed to find cancellation policy")
	}

	return &rec, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*models.CancellationPolicyRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "policy.Repository.FindByID")
	defer span.End()
	defer repositories.Observe("policy.get", time.Now())

	sb := policyStruct.SelectFrom(table)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var rec models.CancellationPolicyRecord
	err := r.db.GetContext(ctx, &rec, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("Failed to get cancellation policy")
		return nil, repositories.Internal("failed to get cancellation policy")
	}

	return &rec, nil
}

func (r *Repository) Upsert(ctx context.Context, rec *models.CancellationPolicyRecord) (*models.CancellationPolicyRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "policy.Repository.Upsert")
	defer span.End()
	defer repositories.Observe("policy.upsert", time.Now())

	ib := database.NewInsertBuilder()
	ib.InsertInto(table).
		Cols("id", "vendor_id", "tour_id", "cancellation_before_minutes", "created_at", "updated_at").
		Values(rec.ID, rec.VendorID, rec.TourID, rec.CancellationBeforeMinutes, sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()")).
		OnConflictUpdate([]string{"id"}, "vendor_id", "tour_id", "cancellation_before_minutes", "updated_at").
		Returning(columns...)

	query, args := ib.Build()
	var stored models.CancellationPolicyRecord
	if err := r.db.GetContext(ctx, &stored, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"id":        rec.ID,
			"vendor_id": rec.VendorID,
			"tour_id":   rec.TourID,
		}).Error("Failed to upsert cancellation policy")
		return nil, repositories.WriteError(err, "failed to upsert cancellation policy")
	}

	return &stored, nil
}
