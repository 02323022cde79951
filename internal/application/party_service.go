package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/ims-platform/backoffice-service/internal/domain"
	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
	"github.com/ims-platform/backoffice-service/pkg/logging"
)

// PartyService handles customer and supplier use cases
type PartyService struct {
	partyRepo domain.PartyRepository
	idGen     domain.IDGenerator
	logger    *logging.Logger
}

// NewPartyService creates a new PartyService
func NewPartyService(partyRepo domain.PartyRepository, idGen domain.IDGenerator, logger *logging.Logger) *PartyService {
	return &PartyService{
		partyRepo: partyRepo,
		idGen:     idGen,
		logger:    logger,
	}
}

// CreateParty creates a customer or supplier
func (s *PartyService) CreateParty(ctx context.Context, kind domain.PartyKind, cmd CreatePartyCommand) (*PartyDTO, error) {
	partyID, err := s.idGen.NextID(kind.EntityKind())
	if err != nil {
		return nil, fmt.Errorf("failed to generate party id: %w", err)
	}

	party, err := domain.NewParty(partyID, kind, cmd.Name, cmd.Phone, cmd.Email, cmd.County, cmd.Town)
	if err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.ErrValidationWithFields("party validation failed", verrs.Fields())
		}
		return nil, apperrors.ErrValidation(err.Error())
	}

	if err := s.partyRepo.Save(ctx, party); err != nil {
		s.logger.WithError(err).Error("Failed to save party", "partyId", partyID)
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	s.logger.Info("Party created", "partyId", partyID, "kind", kind, "name", cmd.Name)

	return ToPartyDTO(party), nil
}

// GetParty retrieves a party by ID, checking it is of the expected kind
func (s *PartyService) GetParty(ctx context.Context, kind domain.PartyKind, partyID string) (*PartyDTO, error) {
	party, err := s.findParty(ctx, kind, partyID)
	if err != nil {
		return nil, err
	}
	return ToPartyDTO(party), nil
}

// ListParties lists parties of a kind
func (s *PartyService) ListParties(ctx context.Context, kind domain.PartyKind, pagination domain.Pagination) (*PartyListResponse, error) {
	if pagination.Page < 1 || pagination.PageSize < 1 {
		pagination = domain.DefaultPagination()
	}

	parties, err := s.partyRepo.FindByKind(ctx, kind, pagination)
	if err != nil {
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}

	dtos := make([]PartyDTO, len(parties))
	for i, p := range parties {
		dtos[i] = *ToPartyDTO(p)
	}

	return &PartyListResponse{
		Data:     dtos,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
	}, nil
}

// UpdateParty updates a party's contact details
func (s *PartyService) UpdateParty(ctx context.Context, kind domain.PartyKind, partyID string, cmd UpdatePartyCommand) (*PartyDTO, error) {
	party, err := s.findParty(ctx, kind, partyID)
	if err != nil {
		return nil, err
	}

	if err := party.UpdateContact(cmd.Name, cmd.Phone, cmd.Email, cmd.County, cmd.Town); err != nil {
		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			return nil, apperrors.ErrValidationWithFields("party validation failed", verrs.Fields())
		}
		return nil, apperrors.ErrValidation(err.Error())
	}

	if err := s.partyRepo.Save(ctx, party); err != nil {
		return nil, fmt.Errorf("failed to save party: %w", err)
	}

	return ToPartyDTO(party), nil
}

// DeleteParty removes a party if its balance is fully settled. The guard runs
// against freshly loaded totals, never against anything the caller sent.
func (s *PartyService) DeleteParty(ctx context.Context, kind domain.PartyKind, partyID string) error {
	party, err := s.findParty(ctx, kind, partyID)
	if err != nil {
		return err
	}

	if !party.CanDelete() {
		s.logger.Warn("Delete blocked by outstanding balance",
			"partyId", partyID,
			"kind", kind,
			"outstanding", party.OutstandingBalance(),
		)
		return apperrors.ErrBusinessRule(apperrors.ReasonHasBalance,
			fmt.Sprintf("%s has an outstanding balance and cannot be deleted", kind)).
			WithDetail("partyId", partyID)
	}

	if err := s.partyRepo.Delete(ctx, partyID); err != nil {
		return fmt.Errorf("failed to delete party: %w", err)
	}

	s.logger.Audit(ctx, "delete", string(kind), partyID, nil)

	return nil
}

func (s *PartyService) findParty(ctx context.Context, kind domain.PartyKind, partyID string) (*domain.Party, error) {
	party, err := s.partyRepo.FindByID(ctx, partyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get party: %w", err)
	}
	if party == nil || party.Kind != kind {
		return nil, apperrors.ErrNotFoundWithID(string(kind), partyID)
	}
	return party, nil
}
