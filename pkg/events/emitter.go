// Package events publishes change notifications for saved records and links.
package events

import (
	"context"

	"github.com/Gobusters/ectologger"

	appctx "github.com/Ramsey-B/primrose/pkg/context"
	"github.com/Ramsey-B/primrose/pkg/kafka"
	"github.com/Ramsey-B/primrose/pkg/models"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

const (
	TypeContactSaved     = "contact.saved"
	TypePolicySaved      = "policy.saved"
	TypeVendorTourLinked = "vendor_tour.linked"
)

// Producer is the transport the emitter writes to.
type Producer interface {
	PublishRecordEvent(ctx context.Context, evt *kafka.RecordEvent) error
}

type Emitter struct {
	producer Producer
	logger   ectologger.Logger
}

func NewEmitter(producer Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitRecordSaved emits contact.saved or policy.saved for rec.
func (e *Emitter) EmitRecordSaved(ctx context.Context, rec models.AssociatedRecord) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitRecordSaved")
	defer span.End()

	eventType := TypeContactSaved
	if rec.Kind() == models.KindPolicy {
		eventType = TypePolicySaved
	}

	vendorID, tourID := rec.Pair()
	event := &kafka.RecordEvent{
		EventType: eventType,
		Kind:      string(rec.Kind()),
		RecordID:  rec.GetID(),
		VendorID:  vendorID,
		TourID:    tourID,
		Data:      rec,
		Operator:  appctx.GetOperator(ctx),
	}

	if err := e.producer.PublishRecordEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Errorf("Failed to emit %s event", eventType)
		return err
	}
	return nil
}

// EmitVendorTourLinked emits vendor_tour.linked for a newly created link.
func (e *Emitter) EmitVendorTourLinked(ctx context.Context, link models.VendorTourLink) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitVendorTourLinked")
	defer span.End()

	event := &kafka.RecordEvent{
		EventType: TypeVendorTourLinked,
		Kind:      "vendor_tour",
		RecordID:  link.ID,
		VendorID:  link.VendorID,
		TourID:    link.TourID,
		Operator:  appctx.GetOperator(ctx),
	}

	if err := e.producer.PublishRecordEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit vendor_tour.linked event")
		return err
	}
	return nil
}

// NoopEmitter discards events. Used when publishing is disabled.
type NoopEmitter struct{}

func (NoopEmitter) EmitRecordSaved(context.Context, models.AssociatedRecord) error { return nil }

func (NoopEmitter) EmitVendorTourLinked(context.Context, models.VendorTourLink) error { return nil }
