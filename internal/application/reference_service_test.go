package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ims-platform/backoffice-service/internal/domain"
	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
)

func TestListReferenceEntries(t *testing.T) {
	refRepo := &fakeReferenceRepo{
		findByKindFn: func(_ context.Context, kind domain.ReferenceKind) ([]domain.ReferenceEntry, error) {
			assert.Equal(t, domain.ReferenceKindCounties, kind)
			return []domain.ReferenceEntry{
				{Kind: kind, Value: "Nairobi"},
				{Kind: kind, Value: "Kiambu"},
			}, nil
		},
	}

	service := NewReferenceService(refRepo, testLogger())

	entries, err := service.ListEntries(context.Background(), domain.ReferenceKindCounties, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Nairobi", entries[0].Value)
}

func TestListReferenceEntriesScopedToParent(t *testing.T) {
	refRepo := &fakeReferenceRepo{
		findByParent: func(_ context.Context, kind domain.ReferenceKind, parent string) ([]domain.ReferenceEntry, error) {
			assert.Equal(t, domain.ReferenceKindTowns, kind)
			assert.Equal(t, "Kiambu", parent)
			return []domain.ReferenceEntry{{Kind: kind, Value: "Ruiru", Parent: parent}}, nil
		},
	}

	service := NewReferenceService(refRepo, testLogger())

	entries, err := service.ListEntries(context.Background(), domain.ReferenceKindTowns, "Kiambu")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Kiambu", entries[0].Parent)
}

func TestListReferenceEntriesUnknownKind(t *testing.T) {
	service := NewReferenceService(&fakeReferenceRepo{}, testLogger())

	_, err := service.ListEntries(context.Background(), domain.ReferenceKind("colours"), "")

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeValidationError, appErr.Code)
}

func TestAddReferenceEntry(t *testing.T) {
	var saved domain.ReferenceEntry
	refRepo := &fakeReferenceRepo{
		saveFn: func(_ context.Context, entry domain.ReferenceEntry) error {
			saved = entry
			return nil
		},
	}

	service := NewReferenceService(refRepo, testLogger())

	dto, err := service.AddEntry(context.Background(), domain.ReferenceKindPaymentModes, "mpesa", "")
	require.NoError(t, err)
	assert.Equal(t, "mpesa", dto.Value)
	assert.Equal(t, domain.ReferenceKindPaymentModes, saved.Kind)
}

func TestAddReferenceEntryEmptyValue(t *testing.T) {
	service := NewReferenceService(&fakeReferenceRepo{}, testLogger())

	_, err := service.AddEntry(context.Background(), domain.ReferenceKindCategories, "", "")

	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Details, "value")
}
