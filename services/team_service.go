package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fantasy-arena/backend/models"
	"github.com/fantasy-arena/backend/repositories"
	"github.com/fantasy-arena/backend/storage"
)

type TeamService struct {
	teamRepo repositories.TeamRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewTeamService(teamRepo repositories.TeamRepository, uploader storage.FileUploader, logger *slog.Logger) *TeamService {
	return &TeamService{teamRepo: teamRepo, uploader: uploader, logger: logger}
}

func (s *TeamService) Create(ctx context.Context, name, division string, ownerID *int) (*models.Team, error) {
	if name == "" || division == "" {
		return nil, fmt.Errorf("%w: name and division are required", ErrValidationFailed)
	}
	team := &models.Team{
		Name:     name,
		Division: division,
		OwnerID:  ownerID,
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *TeamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	s.populateCrestURL(team)
	return team, nil
}

// List returns teams, optionally narrowed to one division. Bot teams are
// excluded unless requested.
func (s *TeamService) List(ctx context.Context, division *string, includeBots bool) ([]*models.Team, error) {
	teams, err := s.teamRepo.List(ctx, division, includeBots)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		s.populateCrestURL(t)
	}
	return teams, nil
}

// UploadCrest stores a crest image and records its object key on the team.
// The previous crest is removed from storage on a successful swap.
func (s *TeamService) UploadCrest(ctx context.Context, teamID int, contentType string, reader io.Reader) (*models.Team, error) {
	if s.uploader == nil {
		return nil, fmt.Errorf("%w: file storage is not configured", ErrValidationFailed)
	}
	team, err := s.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("crests/team-%d", teamID)
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload crest for team %d: %w", teamID, err)
	}

	oldKey := team.CrestKey
	if err := s.teamRepo.UpdateCrestKey(ctx, teamID, &result.Key); err != nil {
		return nil, err
	}
	if oldKey != nil && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete replaced crest",
				slog.String("key", *oldKey), slog.Any("error", err))
		}
	}

	team.CrestKey = &result.Key
	s.populateCrestURL(team)
	return team, nil
}

func (s *TeamService) populateCrestURL(team *models.Team) {
	if s.uploader == nil || team.CrestKey == nil {
		return
	}
	url := s.uploader.GetPublicURL(*team.CrestKey)
	if url != "" {
		team.CrestURL = &url
	}
}
