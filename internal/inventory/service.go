package inventory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"inventoryapi/internal/platform/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Settings are the process-wide values the pipeline needs.
type Settings struct {
	Topic            string
	DefaultAffixSide string
	// Clock defaults to time.Now.
	Clock func() time.Time
}

// Service runs the inventory lifecycle pipeline: store access, validity
// filtering on reads, event publishing on writes and deletes. Each step
// short-circuits the rest on failure.
type Service struct {
	store     Store
	publisher Publisher
	settings  Settings
	logger    observability.Logger
	tracer    observability.Tracer
	recorder  OutcomeRecorder
}

func NewService(
	store Store,
	publisher Publisher,
	settings Settings,
	logger observability.Logger,
	tracer observability.Tracer,
	recorder OutcomeRecorder,
) *Service {
	if settings.Clock == nil {
		settings.Clock = time.Now
	}
	return &Service{
		store:     store,
		publisher: publisher,
		settings:  settings,
		logger:    logger,
		tracer:    tracer,
		recorder:  recorder,
	}
}

// Get returns the record for sku if it has not expired.
func (s *Service) Get(ctx context.Context, sku string) (Record, error) {
	ctx, span := s.start(ctx, "inventory.get", attribute.String("inventory.sku", sku))
	defer span.End()

	now := NowMillis(s.settings.Clock())

	rec, err := s.store.GetBySKU(ctx, sku)
	if err != nil {
		return Record{}, s.fail(span, "get", err)
	}
	rec, err = CheckValid(rec, now)
	if err != nil {
		return Record{}, s.fail(span, "get", err)
	}

	span.SetStatus(codes.Ok, "inventory found")
	return rec, nil
}

// Search returns the unexpired records titled title. No matches and only
// expired matches both yield ErrExpired.
func (s *Service) Search(ctx context.Context, title string) ([]Record, error) {
	ctx, span := s.start(ctx, "inventory.search", attribute.String("inventory.title", title))
	defer span.End()

	now := NowMillis(s.settings.Clock())

	records, err := s.store.FindByTitle(ctx, title)
	if err != nil {
		return nil, s.fail(span, "search", err)
	}
	valid, err := FilterValid(records, now)
	if err != nil {
		return nil, s.fail(span, "search", err)
	}

	span.SetAttributes(
		attribute.Int("inventory.matched", len(records)),
		attribute.Int("inventory.valid", len(valid)),
	)
	span.SetStatus(codes.Ok, "inventory found")
	return valid, nil
}

// Save builds a record from form, overwrites it in the store and publishes
// the change.
func (s *Service) Save(ctx context.Context, form url.Values) (Record, error) {
	ctx, span := s.start(ctx, "inventory.save")
	defer span.End()

	rec, err := RecordFromForm(form, s.settings.DefaultAffixSide)
	if err != nil {
		return Record{}, s.fail(span, "save", err)
	}
	span.SetAttributes(attribute.String("inventory.sku", rec.SKU))
	s.logger.Info("Saving inventory", zap.String("sku", rec.SKU), zap.Uint64("expiry", rec.Expiry))

	if err := s.store.Put(ctx, rec); err != nil {
		return Record{}, s.fail(span, "put", err)
	}
	if err := s.publish(ctx, rec); err != nil {
		return Record{}, s.fail(span, "save", err)
	}

	span.SetStatus(codes.Ok, "inventory saved")
	return rec, nil
}

// Delete removes the record keyed by the entity_type form field and publishes
// the key-only record it echoes.
func (s *Service) Delete(ctx context.Context, form url.Values) (Record, error) {
	ctx, span := s.start(ctx, "inventory.delete")
	defer span.End()

	key := form.Get(EntityKeyField)
	if key == "" {
		return Record{}, s.fail(span, "delete", fmt.Errorf("%w: %s", ErrMissingField, EntityKeyField))
	}
	span.SetAttributes(attribute.String("inventory.sku", key))
	s.logger.Info("Deleting inventory", zap.String("sku", key))

	rec, err := s.store.Delete(ctx, key)
	if err != nil {
		return Record{}, s.fail(span, "delete", err)
	}
	if err := s.publish(ctx, rec); err != nil {
		return Record{}, s.fail(span, "delete", err)
	}

	span.SetStatus(codes.Ok, "inventory deleted")
	return rec, nil
}

func (s *Service) publish(ctx context.Context, rec Record) error {
	outcome := s.publisher.Publish(ctx, rec, s.settings.Topic)
	if outcome.Status == PublishFailed {
		return fmt.Errorf("%w: %v", ErrPublishFailure, outcome.Err)
	}
	return nil
}

// start opens the step span on a context detached from the caller's
// cancellation, so a dropped client never aborts store or broker I/O.
func (s *Service) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(context.WithoutCancel(ctx), name)
	span.SetAttributes(attrs...)
	return ctx, span
}

func (s *Service) fail(span trace.Span, operation string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	if errors.Is(err, ErrStoreUnavailable) {
		s.recorder.StoreError(operation)
		s.logger.Error("❌ Inventory store operation failed", zap.String("operation", operation), zap.Error(err))
	}
	return err
}
