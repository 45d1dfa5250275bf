package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/trainhub/assignment-api/internal/models"
	appErrors "github.com/trainhub/assignment-api/pkg/errors"
)

// RosterService exposes read access to the learner roster.
type RosterService struct {
	roster rosterStore
	logger *zap.Logger
}

// NewRosterService constructs RosterService.
func NewRosterService(roster rosterStore, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{roster: roster, logger: logger}
}

// List returns a project's active learners, optionally filtered.
func (s *RosterService) List(ctx context.Context, projectID string, filter models.RosterFilter) ([]models.Learner, error) {
	learners, err := s.roster.ListByProject(ctx, projectID, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list roster")
	}
	return learners, nil
}

// Find returns a single learner.
func (s *RosterService) Find(ctx context.Context, id string) (*models.Learner, error) {
	return s.roster.FindByID(ctx, id)
}
