package application

import (
	"context"
	"fmt"

	"github.com/ims-platform/backoffice-service/internal/domain"
	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
	"github.com/ims-platform/backoffice-service/pkg/logging"
)

// ReferenceService serves the dimension sets used to populate dropdowns:
// item types, categories, subcategories, counties, towns and payment modes.
type ReferenceService struct {
	refRepo domain.ReferenceRepository
	logger  *logging.Logger
}

// NewReferenceService creates a new ReferenceService
func NewReferenceService(refRepo domain.ReferenceRepository, logger *logging.Logger) *ReferenceService {
	return &ReferenceService{refRepo: refRepo, logger: logger}
}

// ListEntries returns the entries of one dimension set, optionally narrowed
// to the children of a parent value (towns of a county, subcategories of a
// category).
func (s *ReferenceService) ListEntries(ctx context.Context, kind domain.ReferenceKind, parent string) ([]ReferenceEntryDTO, error) {
	if !kind.IsValid() {
		return nil, apperrors.ErrValidationWithFields("reference lookup failed", map[string]string{
			"kind": "unknown reference kind: " + string(kind),
		})
	}

	var (
		entries []domain.ReferenceEntry
		err     error
	)
	if parent != "" {
		entries, err = s.refRepo.FindByKindAndParent(ctx, kind, parent)
	} else {
		entries, err = s.refRepo.FindByKind(ctx, kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list reference entries: %w", err)
	}

	dtos := make([]ReferenceEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = ReferenceEntryDTO{Value: e.Value, Parent: e.Parent}
	}
	return dtos, nil
}

// AddEntry registers a new value in a dimension set. Duplicates are absorbed
// by the repository's upsert.
func (s *ReferenceService) AddEntry(ctx context.Context, kind domain.ReferenceKind, value, parent string) (*ReferenceEntryDTO, error) {
	if !kind.IsValid() {
		return nil, apperrors.ErrValidationWithFields("reference entry rejected", map[string]string{
			"kind": "unknown reference kind: " + string(kind),
		})
	}
	if value == "" {
		return nil, apperrors.ErrValidationWithFields("reference entry rejected", map[string]string{
			"value": "value is required",
		})
	}

	entry := domain.ReferenceEntry{Kind: kind, Value: value, Parent: parent}
	if err := s.refRepo.Save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save reference entry: %w", err)
	}

	s.logger.Info("Reference entry saved", "kind", kind, "value", value)

	return &ReferenceEntryDTO{Value: value, Parent: parent}, nil
}
