package alert

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"incident-service/helper"
	"incident-service/internal/directory"
	"incident-service/internal/notify"
)

// TeamResolver is the directory slice the alert service reads.
type TeamResolver interface {
	TeamByID(ctx context.Context, id string) (*directory.Team, error)
}

// TeamNotifier is the dispatcher surface alerts go out through.
type TeamNotifier interface {
	NotifyTeamAlert(ctx context.Context, team directory.Team, message string, flags notify.Flags) bool
}

type Service interface {
	// SendToTeams reports true iff at least one channel delivered to at
	// least one team.
	SendToTeams(ctx context.Context, req *SendAlertRequest) (bool, error)
}

type alertService struct {
	teams    TeamResolver
	notifier TeamNotifier
	logger   *zap.SugaredLogger
}

func NewAlertService(teams TeamResolver, notifier TeamNotifier, logger *zap.SugaredLogger) Service {
	return &alertService{teams: teams, notifier: notifier, logger: logger}
}

func (s *alertService) SendToTeams(ctx context.Context, req *SendAlertRequest) (bool, error) {
	if req.Message == "" {
		return false, fmt.Errorf("%w: message is required", helper.ErrValidationFailed)
	}
	if len(req.TeamIDs) == 0 {
		return false, fmt.Errorf("%w: at least one team is required", helper.ErrValidationFailed)
	}

	flags := notify.Flags{
		Push:  flagOrTrue(req.SendPushNotification),
		Email: flagOrTrue(req.SendEmail),
		Sms:   flagOrTrue(req.SendSms),
	}

	// Unknown teams are dropped, not fatal: an alert to three teams
	// still reaches the two that exist.
	delivered := false
	resolved := 0
	for _, teamID := range req.TeamIDs {
		team, err := s.teams.TeamByID(ctx, teamID)
		if err != nil {
			s.logger.Errorw("Failed to resolve team for alert", "team_id", teamID, "error", err)
			continue
		}
		if team == nil {
			s.logger.Warnw("Skipping unknown team in alert", "team_id", teamID)
			continue
		}

		resolved++
		if s.notifier.NotifyTeamAlert(ctx, *team, req.Message, flags) {
			delivered = true
		}
	}

	if resolved == 0 {
		s.logger.Warnw("Alert resolved no teams", "team_ids", req.TeamIDs)
		return false, nil
	}
	return delivered, nil
}
