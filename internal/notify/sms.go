package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"incident-service/config"
)

type smsPayload struct {
	SenderID    string `json:"sender_id"`
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
	APIKey      string `json:"api_key"`
}

// HttpSmsSender posts each message to an SMS gateway as JSON. Any 2xx
// response counts as delivered.
type HttpSmsSender struct {
	apiURL   string
	apiKey   string
	senderID string
	dir      Directory
	client   *http.Client
	logger   *zap.SugaredLogger
}

func NewHttpSmsSender(cfg *config.Config, dir Directory, logger *zap.SugaredLogger) *HttpSmsSender {
	return &HttpSmsSender{
		apiURL:   cfg.SmsAPIURL,
		apiKey:   cfg.SmsAPIKey,
		senderID: cfg.SmsSenderID,
		dir:      dir,
		client:   &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

func (s *HttpSmsSender) Send(ctx context.Context, phoneNumber, message string) bool {
	body, err := json.Marshal(smsPayload{
		SenderID:    s.senderID,
		PhoneNumber: phoneNumber,
		Message:     message,
		APIKey:      s.apiKey,
	})
	if err != nil {
		s.logger.Errorw("Failed to encode SMS payload", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Errorw("Failed to build SMS request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Errorw("Failed to send SMS", "phone_number", phoneNumber, "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Errorw("SMS gateway rejected message", "phone_number", phoneNumber, "status", resp.StatusCode)
		return false
	}

	s.logger.Infow("Sent SMS", "phone_number", phoneNumber)
	return true
}

func (s *HttpSmsSender) SendToUser(ctx context.Context, userID, message string) bool {
	user, err := s.dir.UserByID(ctx, userID)
	if err != nil {
		s.logger.Errorw("Failed to resolve user for SMS", "user_id", userID, "error", err)
		return false
	}
	if user == nil || user.PhoneNumber == "" {
		s.logger.Warnw("User not found or has no phone number", "user_id", userID)
		return false
	}

	return s.Send(ctx, user.PhoneNumber, message)
}

// SendToTeam texts every member with a phone number and succeeds only if
// every delivery succeeded.
func (s *HttpSmsSender) SendToTeam(ctx context.Context, teamID, message string) bool {
	members, err := s.dir.TeamMembers(ctx, teamID)
	if err != nil {
		s.logger.Errorw("Failed to resolve team for SMS", "team_id", teamID, "error", err)
		return false
	}

	numbers := make([]string, 0, len(members))
	for _, m := range members {
		if m.PhoneNumber != "" {
			numbers = append(numbers, m.PhoneNumber)
		}
	}
	if len(numbers) == 0 {
		s.logger.Warnw("No team members with phone numbers", "team_id", teamID)
		return false
	}

	results := fanOut(len(numbers), func(i int) bool {
		return s.Send(ctx, numbers[i], message)
	})
	return allOf(results)
}

// MockSmsSender stands in when the SMS feature flag is off.
type MockSmsSender struct {
	logger *zap.SugaredLogger
}

func NewMockSmsSender(logger *zap.SugaredLogger) *MockSmsSender {
	return &MockSmsSender{logger: logger}
}

func (s *MockSmsSender) Send(_ context.Context, phoneNumber, _ string) bool {
	s.logger.Infow("[MOCK SMS] Would send SMS", "phone_number", phoneNumber)
	return true
}

func (s *MockSmsSender) SendToUser(_ context.Context, userID, _ string) bool {
	s.logger.Infow("[MOCK SMS] Would send SMS to user", "user_id", userID)
	return true
}

func (s *MockSmsSender) SendToTeam(_ context.Context, teamID, _ string) bool {
	s.logger.Infow("[MOCK SMS] Would send SMS to team", "team_id", teamID)
	return true
}
