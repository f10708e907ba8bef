package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/dorm-admin-api/internal/models"
	"github.com/noah-isme/dorm-admin-api/pkg/database"
	appErrors "github.com/noah-isme/dorm-admin-api/pkg/errors"
)

// Store is the persistence contract of an owned resource. Reads and writes
// outside the scope behave as if the row did not exist and report
// sql.ErrNoRows.
type Store[T any] interface {
	List(ctx context.Context, scope models.Scope) ([]T, error)
	FindByID(ctx context.Context, scope models.Scope, id int64) (*T, error)
	Create(ctx context.Context, ownerID int64, item *T) error
	Update(ctx context.Context, scope models.Scope, item *T) error
	Delete(ctx context.Context, scope models.Scope, id int64) error
	Stats(ctx context.Context, scope models.Scope) (*models.ResourceStats, error)
}

// Schema binds request payloads to a record type.
type Schema[T, C, U any] struct {
	// Resource names the record kind in messages, metrics and cache keys.
	Resource string
	// ID returns the identifier of a stored record.
	ID func(item *T) int64
	// Assign overwrites every mutable field of item from a full payload.
	Assign func(ctx context.Context, scope models.Scope, item *T, req C) error
	// Patch overwrites the fields present in a partial payload.
	Patch func(ctx context.Context, scope models.Scope, item *T, req U) error
}

// ResourceOptions carries the collaborators shared by every resource service.
type ResourceOptions struct {
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	StatsTTL  time.Duration
}

// ResourceService implements scoped CRUD and stats for one record kind.
type ResourceService[T, C, U any] struct {
	store     Store[T]
	schema    Schema[T, C, U]
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	statsTTL  time.Duration
}

// NewResourceService constructs a ResourceService.
func NewResourceService[T, C, U any](store Store[T], schema Schema[T, C, U], opts ResourceOptions) *ResourceService[T, C, U] {
	if opts.Validator == nil {
		opts.Validator = validator.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &ResourceService[T, C, U]{
		store:     store,
		schema:    schema,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		validator: opts.Validator,
		logger:    opts.Logger,
		statsTTL:  opts.StatsTTL,
	}
}

// Resource returns the record kind served.
func (s *ResourceService[T, C, U]) Resource() string {
	return s.schema.Resource
}

// List returns every record visible to scope.
func (s *ResourceService[T, C, U]) List(ctx context.Context, scope models.Scope) ([]T, error) {
	items, err := s.store.List(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to list %s records", s.schema.Resource))
	}
	return items, nil
}

// Get returns one visible record.
func (s *ResourceService[T, C, U]) Get(ctx context.Context, scope models.Scope, id int64) (*T, error) {
	item, err := s.store.FindByID(ctx, scope, id)
	if err != nil {
		return nil, s.storeError(err, "load")
	}
	return item, nil
}

// Create validates req and stores a new record owned by the scope's account.
func (s *ResourceService[T, C, U]) Create(ctx context.Context, scope models.Scope, req C) (*T, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	item := new(T)
	if err := s.schema.Assign(ctx, scope, item, req); err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, scope.AccountID, item); err != nil {
		return nil, s.storeError(err, "create")
	}
	s.written(ctx, "create")
	return s.Get(ctx, scope, s.schema.ID(item))
}

// Replace overwrites every mutable field of a visible record.
func (s *ResourceService[T, C, U]) Replace(ctx context.Context, scope models.Scope, id int64, req C) (*T, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.schema.Assign(ctx, scope, item, req); err != nil {
		return nil, err
	}
	return s.save(ctx, scope, item)
}

// Update applies the fields present in req to a visible record.
func (s *ResourceService[T, C, U]) Update(ctx context.Context, scope models.Scope, id int64, req U) (*T, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}
	item, err := s.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := s.schema.Patch(ctx, scope, item, req); err != nil {
		return nil, err
	}
	return s.save(ctx, scope, item)
}

// Delete removes a visible record.
func (s *ResourceService[T, C, U]) Delete(ctx context.Context, scope models.Scope, id int64) error {
	if err := s.store.Delete(ctx, scope, id); err != nil {
		return s.storeError(err, "delete")
	}
	s.written(ctx, "delete")
	return nil
}

// Stats aggregates the identifiers of the records visible to scope.
func (s *ResourceService[T, C, U]) Stats(ctx context.Context, scope models.Scope) (*models.ResourceStats, error) {
	key := StatsKey(s.schema.Resource, scope)
	var cached models.ResourceStats
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	pattern := StatsPattern(s.schema.Resource)
	generation := s.cache.Generation(pattern)
	stats, err := s.store.Stats(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to compute %s stats", s.schema.Resource))
	}
	s.cache.SetFresh(ctx, pattern, generation, key, stats, s.statsTTL)
	return stats, nil
}

func (s *ResourceService[T, C, U]) save(ctx context.Context, scope models.Scope, item *T) (*T, error) {
	if err := s.store.Update(ctx, scope, item); err != nil {
		return nil, s.storeError(err, "update")
	}
	s.written(ctx, "update")
	return s.Get(ctx, scope, s.schema.ID(item))
}

func (s *ResourceService[T, C, U]) validate(req interface{}) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid %s payload", s.schema.Resource))
	}
	return nil
}

func (s *ResourceService[T, C, U]) written(ctx context.Context, operation string) {
	s.metrics.RecordWrite(s.schema.Resource, operation)
	s.cache.Invalidate(ctx, StatsPattern(s.schema.Resource))
}

func (s *ResourceService[T, C, U]) storeError(err error, action string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s not found", s.schema.Resource))
	case database.IsForeignKeyViolation(err):
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, fmt.Sprintf("%s is still referenced by other records", s.schema.Resource))
	default:
		s.logger.Error("store operation failed", zap.String("resource", s.schema.Resource), zap.String("action", action), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to %s %s", action, s.schema.Resource))
	}
}

// Finder loads a record through a scope.
type Finder[T any] interface {
	FindByID(ctx context.Context, scope models.Scope, id int64) (*T, error)
}

// resolve loads a referenced record through the caller's scope. A reference
// the caller cannot see is a validation failure.
func resolve[T any](ctx context.Context, f Finder[T], scope models.Scope, resource string, id int64) (*T, error) {
	item, err := f.FindByID(ctx, scope, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s %d does not exist", resource, id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load %s", resource))
	}
	return item, nil
}

// requiredText trims value and rejects blank input.
func requiredText(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must not be empty", field))
	}
	return trimmed, nil
}

func parseDate(field, value string) (models.Date, error) {
	date, err := models.ParseDate(strings.TrimSpace(value))
	if err != nil {
		return models.Date{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("%s must be formatted as YYYY-MM-DD", field))
	}
	return date, nil
}
