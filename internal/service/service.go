// Package service provides the role-aware inventory operations shared by the
// HTTP API and the command-line tool.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/abgdnv/inventory/internal/auth"
	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/events"
	"github.com/abgdnv/inventory/internal/inventory"
	"github.com/abgdnv/inventory/internal/record"
	"github.com/abgdnv/inventory/internal/report"
	"github.com/abgdnv/inventory/internal/store"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/go-playground/validator/v10"
)

// InventoryService defines the operations on inventory records.
type InventoryService interface {
	// List returns the records of kind in insertion order, skipping offset
	// records and returning at most limit of them (0 means no limit).
	List(ctx context.Context, kind inventory.Kind, offset, limit int) ([]RecordDto, error)

	// FindByID returns a single record.
	// Returns ErrRecordNotFound if no record has the id.
	FindByID(ctx context.Context, kind inventory.Kind, id int) (*RecordDto, error)

	// Add creates a record with the next free id. Admin only.
	Add(ctx context.Context, role auth.Role, kind inventory.Kind, dto RecordCreateDto) (*RecordDto, error)

	// Edit changes the non-zero fields of a record. Employees may only change the quantity.
	// Returns ErrRecordNotFound if no record has the id.
	Edit(ctx context.Context, role auth.Role, kind inventory.Kind, id int, dto RecordEditDto) (*RecordDto, error)

	// Delete removes a record. Admin only.
	// Returns ErrRecordNotFound if no record has the id.
	Delete(ctx context.Context, role auth.Role, kind inventory.Kind, id int) error

	// Report computes the value report of kind at now.
	Report(ctx context.Context, kind inventory.Kind, now time.Time) (*report.Report, error)
}

// StoreProvider resolves the record store of an inventory kind.
type StoreProvider interface {
	Store(kind inventory.Kind) (*store.Store, error)
}

// Service implements InventoryService on top of the file backed stores.
type Service struct {
	stores    StoreProvider
	publisher messaging.Publisher
	validate  *validator.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new Service. A nil publisher disables events.
func NewService(stores StoreProvider, publisher messaging.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &Service{
		stores:    stores,
		publisher: publisher,
		validate:  NewValidator(),
		logger:    logger.With("component", "service"),
		now:       time.Now,
	}
}

// RecordDto represents a record returned to callers.
type RecordDto struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// RecordCreateDto represents the data transfer object for creating a record.
type RecordCreateDto struct {
	Name     string  `json:"name"     validate:"required,max=100,recordname"`
	Quantity int     `json:"quantity" validate:"gt=0"`
	Price    float64 `json:"price"    validate:"gt=0"`
}

// RecordEditDto represents an edit. Omitted or zero fields keep their value.
type RecordEditDto struct {
	Name     string  `json:"name,omitempty"     validate:"omitempty,max=100,recordname"`
	Quantity int     `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	Price    float64 `json:"price,omitempty"    validate:"omitempty,gt=0"`
}

// ValidationError lists the fields that failed validation and the rule each one failed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, rule := range e.Fields {
		parts = append(parts, field+": "+rule)
	}
	return fmt.Sprintf("%s: %s", perrors.ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return perrors.ErrValidation
}

// NewValidator returns a validator that knows the recordname rule and reports
// fields by their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("recordname", func(fl validator.FieldLevel) bool {
		return record.ValidName(fl.Field().String())
	})
	return v
}

func (s *Service) List(ctx context.Context, kind inventory.Kind, offset, limit int) ([]RecordDto, error) {
	st, err := s.stores.Store(kind)
	if err != nil {
		return nil, err
	}
	records := st.All()
	offset = max(offset, 0)
	if offset >= len(records) {
		return []RecordDto{}, nil
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	dtos := make([]RecordDto, len(records))
	for i, r := range records {
		dtos[i] = toDto(r)
	}
	return dtos, nil
}

func (s *Service) FindByID(ctx context.Context, kind inventory.Kind, id int) (*RecordDto, error) {
	st, err := s.stores.Store(kind)
	if err != nil {
		return nil, err
	}
	r, err := st.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("%s %d: %w", kind, id, err)
	}
	dto := toDto(r)
	return &dto, nil
}

func (s *Service) Add(ctx context.Context, role auth.Role, kind inventory.Kind, dto RecordCreateDto) (*RecordDto, error) {
	if !role.IsAdmin() {
		return nil, fmt.Errorf("%s can't add records: %w", role, perrors.ErrPermissionDenied)
	}
	if err := s.validateDto(dto); err != nil {
		return nil, err
	}
	st, err := s.stores.Store(kind)
	if err != nil {
		return nil, err
	}

	r, err := st.Add(dto.Name, dto.Quantity, dto.Price)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Record added", "kind", kind, "id", r.ID)
	s.publish(ctx, kind, events.ActionCreated, r, role)

	created := toDto(r)
	return &created, nil
}

func (s *Service) Edit(ctx context.Context, role auth.Role, kind inventory.Kind, id int, dto RecordEditDto) (*RecordDto, error) {
	if !role.IsAdmin() && (dto.Name != "" || dto.Price != 0) {
		return nil, fmt.Errorf("%s can only change quantity: %w", role, perrors.ErrPermissionDenied)
	}
	if err := s.validateDto(dto); err != nil {
		return nil, err
	}
	st, err := s.stores.Store(kind)
	if err != nil {
		return nil, err
	}

	changes := store.Changes{Name: dto.Name, Quantity: dto.Quantity, Price: dto.Price}
	r, err := st.Edit(id, changes)
	if err != nil {
		if errors.Is(err, perrors.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s %d: %w", kind, id, err)
		}
		return nil, err
	}
	if !changes.IsZero() {
		s.logger.InfoContext(ctx, "Record updated", "kind", kind, "id", id, "role", role)
		s.publish(ctx, kind, events.ActionUpdated, r, role)
	}

	updated := toDto(r)
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, role auth.Role, kind inventory.Kind, id int) error {
	if !role.IsAdmin() {
		return fmt.Errorf("%s can't delete records: %w", role, perrors.ErrPermissionDenied)
	}
	st, err := s.stores.Store(kind)
	if err != nil {
		return err
	}

	r, err := st.FindByID(id)
	if err != nil {
		return fmt.Errorf("%s %d: %w", kind, id, err)
	}
	if err := st.Delete(id); err != nil {
		if errors.Is(err, perrors.ErrRecordNotFound) {
			return fmt.Errorf("%s %d: %w", kind, id, err)
		}
		return err
	}
	s.logger.InfoContext(ctx, "Record deleted", "kind", kind, "id", id)
	s.publish(ctx, kind, events.ActionDeleted, r, role)
	return nil
}

func (s *Service) Report(ctx context.Context, kind inventory.Kind, now time.Time) (*report.Report, error) {
	st, err := s.stores.Store(kind)
	if err != nil {
		return nil, err
	}
	r := report.Build(kind.String(), kind.Title(), st.All(), now)
	return &r, nil
}

func (s *Service) validateDto(dto any) error {
	err := s.validate.Struct(dto)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("%w: %w", perrors.ErrValidation, err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
	}
	return &ValidationError{Fields: fields}
}

// publish sends a record change event. Failures are logged only, the file has
// already been written.
func (s *Service) publish(ctx context.Context, kind inventory.Kind, action events.Action, r record.Record, role auth.Role) {
	event := events.RecordChangedEvent{
		Kind:   kind.String(),
		Action: action,
		Record: events.RecordSnapshot{
			ID:       r.ID,
			Name:     r.Name,
			Quantity: r.Quantity,
			Price:    r.Price,
		},
		Actor:      role.String(),
		OccurredAt: s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish RecordChangedEvent", "subject", event.Subject(), "error", err)
	}
}

func toDto(r record.Record) RecordDto {
	return RecordDto{
		ID:       r.ID,
		Name:     r.Name,
		Quantity: r.Quantity,
		Price:    r.Price,
	}
}
