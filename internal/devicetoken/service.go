package devicetoken

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"incident-service/helper"
	"incident-service/internal/directory"
)

type Service interface {
	Register(ctx context.Context, userID string, req *RegisterRequest) (*DeviceToken, error)
	ListForUser(ctx context.Context, userID string) ([]*DeviceToken, error)
	Deactivate(ctx context.Context, userID, token string) (bool, error)
	Delete(ctx context.Context, tokenID string) (bool, error)
	ActiveTokensForUser(ctx context.Context, userID string) ([]string, error)
	ActiveTokensForTeam(ctx context.Context, teamID string) ([]string, error)
	SweepStale(ctx context.Context, retention time.Duration) (int64, error)
}

type tokenService struct {
	repository Repository
	dir        directory.Directory
	logger     *zap.SugaredLogger
}

func NewTokenService(repository Repository, dir directory.Directory, logger *zap.SugaredLogger) Service {
	return &tokenService{
		repository: repository,
		dir:        dir,
		logger:     logger,
	}
}

func (s *tokenService) Register(ctx context.Context, userID string, req *RegisterRequest) (*DeviceToken, error) {
	if userID == "" || req.DeviceToken == "" {
		return nil, fmt.Errorf("%w: user_id and device_token are required", helper.ErrValidationFailed)
	}

	record, err := s.repository.Upsert(ctx, userID, req.DeviceToken, req.DeviceType, req.DeviceName, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Registered device token", "user_id", userID, "device_type", record.DeviceType)
	return record, nil
}

func (s *tokenService) ListForUser(ctx context.Context, userID string) ([]*DeviceToken, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", helper.ErrValidationFailed)
	}
	return s.repository.FindByUser(ctx, userID)
}

func (s *tokenService) Deactivate(ctx context.Context, userID, token string) (bool, error) {
	if userID == "" || token == "" {
		return false, fmt.Errorf("%w: user_id and device_token are required", helper.ErrValidationFailed)
	}

	ok, err := s.repository.Deactivate(ctx, userID, token)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Infow("Deactivated device token", "user_id", userID)
	}
	return ok, nil
}

func (s *tokenService) Delete(ctx context.Context, tokenID string) (bool, error) {
	id, err := primitive.ObjectIDFromHex(tokenID)
	if err != nil {
		// A malformed surrogate ID can never match a record.
		return false, nil
	}

	ok, err := s.repository.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if ok {
		s.logger.Infow("Deleted device token", "token_id", tokenID)
	}
	return ok, nil
}

func (s *tokenService) ActiveTokensForUser(ctx context.Context, userID string) ([]string, error) {
	return s.repository.ActiveTokensForUser(ctx, userID)
}

// ActiveTokensForTeam resolves every active member of the team and returns
// their active tokens, deduplicated. An unknown team or a team with no
// devices yields an empty set, never an error.
func (s *tokenService) ActiveTokensForTeam(ctx context.Context, teamID string) ([]string, error) {
	members, err := s.dir.TeamMembers(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return s.repository.ActiveTokensForUsers(ctx, ids)
}

// SweepStale deactivates tokens unused for longer than the retention
// window. Runs on a schedule; best-effort.
func (s *tokenService) SweepStale(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-retention)
	n, err := s.repository.DeactivateUnusedSince(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Infow("Deactivated stale device tokens", "count", n, "cutoff", cutoff)
	}
	return n, nil
}
