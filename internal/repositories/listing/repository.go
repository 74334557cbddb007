package listing

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

const table = "listings"

var listingStruct = database.NewStruct(new(models.Listing))

// Repository handles listing persistence
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

// List returns every stored listing ordered by id.
func (r *Repository) List(ctx context.Context) ([]models.Listing, error) {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.List")
	defer span.End()
	defer repositories.Observe("listing.list", time.Now())

	sb := listingStruct.SelectFrom(table)
	sb.OrderBy("id")

	query, args := sb.Build()
	listings := []models.Listing{}
	if err := r.db.SelectContext(ctx, &listings, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list listings")
		return nil, repositories.Internal("failed to list listings")
	}

	return listings, nil
}

// Get returns the listing with id, or nil when none is stored.
func (r *Repository) Get(ctx context.Context, id string) (*models.Listing, error) {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.Get")
	defer span.End()
	defer repositories.Observe("listing.get", time.Now())

	sb := listingStruct.SelectFrom(table)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var listing models.Listing
	err := r.db.GetContext(ctx, &listing, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"listing_id": id,
		}).Error("Failed to get listing")
		return nil, repositories.Internal("failed to get listing")
	}

	return &listing, nil
}

// Upsert inserts the listing or replaces its fields when the id exists.
func (r *Repository) Upsert(ctx context.Context, listing models.Listing) error {
	ctx, span := tracing.StartSpan(ctx, "listing.Repository.Upsert")
	defer span.End()
	defer repositories.Observe("listing.upsert", time.Now())

	ib := database.NewInsertBuilder()
	ib.InsertInto(table).
		Cols("id", "product_name", "vendor_id", "tour_id", "listing_kind", "status", "created_at", "updated_at").
		Values(listing.ID, listing.ProductName, listing.VendorID, listing.TourID, string(listing.ListingKind), listing.Status,
			sqlbuilder.Raw("NOW()"), sqlbuilder.Raw("NOW()")).
		OnConflictUpdate([]string{"id"}, "product_name", "vendor_id", "tour_id", "listing_kind", "status", "updated_at")

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"listing_id": listing.ID,
		}).Error("Failed to upsert listing")
		return repositories.WriteError(err, "failed to upsert listing")
	}

	return nil
}
