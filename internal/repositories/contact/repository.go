package contact

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

const table = "contact_records"

var (
	contactStruct = database.NewStruct(new(models.ContactRecord))
	columns       = []string{"id", "vendor_id", "tour_id", "email", "phone", "created_at", "updated_at"}
)

// Repository handles contact record persistence
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

// FindByPair returns the pair's contact record, or nil when none is stored.
func (r *Repository) FindByPair(ctx context.Context, vendorID, tourID string) (*models.ContactRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.FindByPair")
	defer span.End()
	defer repositories.Observe("contact.find", time.Now())

	sb := contactStruct.SelectFrom(table)
	sb.Where(sb.Equal("vendor_id", vendorID), sb.Equal("tour_id", tourID))

	query, args := sb.Build()
	var rec models.ContactRecord
	err := r.db.GetContext(ctx, &rec, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"vendor_id": vendorID,
			"tour_id":   tourID,
		}).Error("Failed to find contact record")
		return nil, repositories.Internal("failed to find contact record")
	}

	return &rec, nil
}

// FindByID returns the record stored under id, or nil.
func (r *Repository) FindByID(ctx context.Context, id string) (*models.ContactRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.FindByID")
	defer span.End()
	defer repositories.Observe("contact.get", time.Now())

	sb := contactStruct.SelectFrom(table)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var rec models.ContactRecord
	err := r.db.GetContext(ctx, &rec, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("id", id).Error("Failed to get contact record")
		return nil, repositories.Internal("failed to get contact record")
	}

	return &rec, nil
}

// Upsert writes rec by id. An existing row keeps created_at and gets a new updated_at.
func (r *Repository) Upsert(ctx context.Context, rec *models.ContactRecord) (*models.ContactRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "contact.Repository.Upsert")
	defer span.End()
	defer repositories.Observe("contact.upsert", time.Now())

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"id":        rec.ID,
		"vendor_id": rec.VendorID,
		"tour_id":   rec.TourID,
	})

	ib := database.NewInsertBuilder()
	ib.InsertInto(table).
		Cols("id", "vendor_id", "tour_id", "email", "phone", "created_at", "updated_at").
		Values(rec.ID, rec.VendorID, rec.TourID, rec.Email, rec.Phone, sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()")).
		OnConflictUpdate([]string{"id"}, "vendor_id", "tour_id", "email", "phone", "updated_at").
		Returning(columns...)

	query, args := ib.Build()
	var stored models.ContactRecord
	if err := r.db.GetContext(ctx, &stored, query, args...); err != nil {
		log.WithError(err).Error("Failed to upsert contact record")
		return nil, repositories.WriteError(err, "failed to upsert contact record")
	}

	log.Debug("Upserted contact record")
	return &stored, nil
}
