package application

import (
	"context"

	"github.com/ims-platform/backoffice-service/internal/domain"
	apperrors "github.com/ims-platform/backoffice-service/pkg/errors"
	"github.com/ims-platform/backoffice-service/pkg/logging"
)

// IDService issues display identifiers for new records so the UI can show
// an identifier before the record is persisted.
type IDService struct {
	idGen  domain.IDGenerator
	logger *logging.Logger
}

// NewIDService creates a new IDService
func NewIDService(idGen domain.IDGenerator, logger *logging.Logger) *IDService {
	return &IDService{idGen: idGen, logger: logger}
}

// GenerateID issues a new identifier for the given entity kind
func (s *IDService) GenerateID(ctx context.Context, cmd GenerateIDCommand) (*GeneratedIDDTO, error) {
	kind := domain.EntityKind(cmd.Kind)
	if !kind.IsValid() {
		return nil, apperrors.ErrValidationWithFields("id generation failed", map[string]string{
			"kind": "unknown entity kind: " + cmd.Kind,
		})
	}

	id, err := s.idGen.NextID(kind)
	if err != nil {
		return nil, apperrors.ErrInternal("failed to generate id").Wrap(err)
	}

	s.logger.Debug("Identifier issued", "kind", kind, "id", id)

	return &GeneratedIDDTO{Kind: string(kind), ID: id}, nil
}
