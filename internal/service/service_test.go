package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/abgdnv/inventory/internal/auth"
	perrors "github.com/abgdnv/inventory/internal/errors"
	"github.com/abgdnv/inventory/internal/events"
	"github.com/abgdnv/inventory/internal/inventory"
	"github.com/abgdnv/inventory/internal/store"
	"github.com/abgdnv/inventory/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, event messaging.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// stubProvider serves a fixed set of stores.
type stubProvider map[inventory.Kind]*store.Store

func (p stubProvider) Store(kind inventory.Kind) (*store.Store, error) {
	s, ok := p[kind]
	if !ok {
		return nil, perrors.ErrUnknownKind
	}
	return s, nil
}

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestService opens seeded inventories in a temp dir.
func newTestService(t *testing.T, publisher messaging.Publisher) *Service {
	t.Helper()
	inv, err := inventory.Open(t.TempDir(), true, discardLogger())
	require.NoError(t, err)
	svc := NewService(inv, publisher, discardLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func Test_Service_List(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	testCases := []struct {
		name        string
		offset      int
		limit       int
		expectedIDs []int
	}{
		{name: "all", expectedIDs: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{name: "first page", limit: 3, expectedIDs: []int{1, 2, 3}},
		{name: "second page", offset: 3, limit: 3, expectedIDs: []int{4, 5, 6}},
		{name: "tail", offset: 8, limit: 5, expectedIDs: []int{9, 10}},
		{name: "past the end", offset: 20, expectedIDs: []int{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			list, err := svc.List(ctx, inventory.Product, tc.offset, tc.limit)
			// then
			require.NoError(t, err)
			ids := make([]int, len(list))
			for i, r := range list {
				ids[i] = r.ID
			}
			assert.Equal(t, tc.expectedIDs, ids)
		})
	}

	_, err := svc.List(ctx, inventory.Kind("widgets"), 0, 0)
	assert.ErrorIs(t, err, perrors.ErrUnknownKind)
}

func Test_Service_FindByID(t *testing.T) {
	svc := newTestService(t, nil)

	found, err := svc.FindByID(context.Background(), inventory.RawMaterial, 1)
	require.NoError(t, err)
	assert.Equal(t, &RecordDto{ID: 1, Name: "Cotton Fabric", Quantity: 500, Price: 150}, found)

	_, err = svc.FindByID(context.Background(), inventory.RawMaterial, 99)
	assert.ErrorIs(t, err, perrors.ErrRecordNotFound)
}

func Test_Service_Add(t *testing.T) {
	testCases := []struct {
		name           string
		role           auth.Role
		dto            RecordCreateDto
		expectedID     int
		expectedFields map[string]string
		expectError    error
	}{
		{
			name:       "admin adds record",
			role:       auth.Admin,
			dto:        RecordCreateDto{Name: "Linen", Quantity: 40, Price: 310.5},
			expectedID: 11,
		},
		{
			name:        "employee denied",
			role:        auth.Employee,
			dto:         RecordCreateDto{Name: "Linen", Quantity: 40, Price: 310.5},
			expectError: perrors.ErrPermissionDenied,
		},
		{
			name:           "invalid fields",
			role:           auth.Admin,
			dto:            RecordCreateDto{Name: "12|34", Quantity: 0, Price: -1},
			expectError:    perrors.ErrValidation,
			expectedFields: map[string]string{"name": "failed on rule: recordname", "quantity": "failed on rule: gt", "price": "failed on rule: gt"},
		},
		{
			name:           "missing name",
			role:           auth.Admin,
			dto:            RecordCreateDto{Quantity: 1, Price: 1},
			expectError:    perrors.ErrValidation,
			expectedFields: map[string]string{"name": "failed on rule: required"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			pub := new(mockPublisher)
			if tc.expectError == nil {
				pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.RecordChangedEvent) bool {
					return e.Subject() == "inventory.raw_material.created" &&
						e.Record.ID == tc.expectedID && e.Actor == "admin" && e.OccurredAt.Equal(fixedNow)
				})).Return(nil).Once()
			}
			svc := newTestService(t, pub)
			// when
			created, err := svc.Add(context.Background(), tc.role, inventory.RawMaterial, tc.dto)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				if tc.expectedFields != nil {
					var vErr *ValidationError
					require.ErrorAs(t, err, &vErr)
					assert.Equal(t, tc.expectedFields, vErr.Fields)
				}
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedID, created.ID)
			assert.Equal(t, tc.dto.Name, created.Name)
			pub.AssertExpectations(t)
		})
	}
}

func Test_Service_Add_PublishFailureIsNotFatal(t *testing.T) {
	// given
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats: timeout")).Once()
	svc := newTestService(t, pub)
	// when
	created, err := svc.Add(context.Background(), auth.Admin, inventory.Product, RecordCreateDto{Name: "Scarves", Quantity: 5, Price: 99})
	// then
	require.NoError(t, err)
	found, err := svc.FindByID(context.Background(), inventory.Product, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Scarves", found.Name)
	pub.AssertExpectations(t)
}

func Test_Service_Edit(t *testing.T) {
	testCases := []struct {
		name        string
		role        auth.Role
		id          int
		dto         RecordEditDto
		expected    *RecordDto
		expectEvent bool
		expectError error
	}{
		{
			name:        "admin changes every field",
			role:        auth.Admin,
			id:          2,
			dto:         RecordEditDto{Name: "Raw Denim", Quantity: 280, Price: 210},
			expected:    &RecordDto{ID: 2, Name: "Raw Denim", Quantity: 280, Price: 210},
			expectEvent: true,
		},
		{
			name:        "employee changes quantity",
			role:        auth.Employee,
			id:          2,
			dto:         RecordEditDto{Quantity: 250},
			expected:    &RecordDto{ID: 2, Name: "Polyester Fabric", Quantity: 250, Price: 120},
			expectEvent: true,
		},
		{
			name:        "employee can't rename",
			role:        auth.Employee,
			id:          2,
			dto:         RecordEditDto{Name: "Other", Quantity: 250},
			expectError: perrors.ErrPermissionDenied,
		},
		{
			name:        "employee can't reprice",
			role:        auth.Employee,
			id:          2,
			dto:         RecordEditDto{Price: 1},
			expectError: perrors.ErrPermissionDenied,
		},
		{
			name:     "empty edit keeps record",
			role:     auth.Employee,
			id:       2,
			dto:      RecordEditDto{},
			expected: &RecordDto{ID: 2, Name: "Polyester Fabric", Quantity: 450, Price: 120},
		},
		{
			name:        "negative quantity",
			role:        auth.Admin,
			id:          2,
			dto:         RecordEditDto{Quantity: -5},
			expectError: perrors.ErrValidation,
		},
		{
			name:        "not found",
			role:        auth.Admin,
			id:          42,
			dto:         RecordEditDto{Quantity: 5},
			expectError: perrors.ErrRecordNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			pub := new(mockPublisher)
			if tc.expectEvent {
				pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.RecordChangedEvent) bool {
					return e.Subject() == "inventory.raw_material.updated" && e.Actor == tc.role.String()
				})).Return(nil).Once()
			}
			svc := newTestService(t, pub)
			// when
			updated, err := svc.Edit(context.Background(), tc.role, inventory.RawMaterial, tc.id, tc.dto)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, updated)
			if tc.expectEvent {
				pub.AssertExpectations(t)
			} else {
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
			}
		})
	}
}

func Test_Service_Delete(t *testing.T) {
	// given
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, mock.MatchedBy(func(e events.RecordChangedEvent) bool {
		return e.Subject() == "inventory.product.deleted" && e.Record.Name == "Men's T-Shirts"
	})).Return(nil).Once()
	svc := newTestService(t, pub)
	ctx := context.Background()

	// when
	err := svc.Delete(ctx, auth.Admin, inventory.Product, 1)

	// then
	require.NoError(t, err)
	_, err = svc.FindByID(ctx, inventory.Product, 1)
	assert.ErrorIs(t, err, perrors.ErrRecordNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, auth.Admin, inventory.Product, 1), perrors.ErrRecordNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, auth.Employee, inventory.Product, 2), perrors.ErrPermissionDenied)
	pub.AssertExpectations(t)
}

func Test_Service_Add_PersistFailure(t *testing.T) {
	// given: the store path is a directory, so every save fails
	pub := new(mockPublisher)
	svc := NewService(stubProvider{inventory.Product: store.New(t.TempDir(), discardLogger())}, pub, discardLogger())
	// when
	_, err := svc.Add(context.Background(), auth.Admin, inventory.Product, RecordCreateDto{Name: "Caps", Quantity: 1, Price: 1})
	// then
	assert.ErrorIs(t, err, perrors.ErrPersist)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func Test_Service_Report(t *testing.T) {
	svc := newTestService(t, nil)

	r, err := svc.Report(context.Background(), inventory.RawMaterial, fixedNow)

	require.NoError(t, err)
	assert.Equal(t, "raw_material", r.Kind)
	assert.Equal(t, "Raw Material", r.Title)
	assert.Len(t, r.Lines, 10)
	assert.Equal(t, fixedNow, r.GeneratedAt)
	assert.Equal(t, 75000.0, r.Lines[0].Value)
}
