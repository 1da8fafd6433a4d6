package notify

import (
	"context"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

type fcmClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FcmPushSender delivers push notifications through Firebase Cloud
// Messaging, resolving recipients through the device-token registry.
type FcmPushSender struct {
	client fcmClient
	tokens TokenSource
	logger *zap.SugaredLogger
}

func NewFcmPushSender(client *messaging.Client, tokens TokenSource, logger *zap.SugaredLogger) *FcmPushSender {
	return &FcmPushSender{client: client, tokens: tokens, logger: logger}
}

func (s *FcmPushSender) Send(ctx context.Context, msg PushMessage) bool {
	fcmMsg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data:  msg.Data,
		Token: msg.Token,
	}

	if _, err := s.client.Send(ctx, fcmMsg); err != nil {
		s.logger.Errorw("Failed to send push notification", "token", maskToken(msg.Token), "error", err)
		return false
	}
	s.logger.Infow("Sent push notification", "token", maskToken(msg.Token))
	return true
}

func (s *FcmPushSender) SendToUser(ctx context.Context, userID, title, body string, data map[string]string) bool {
	tokens, err := s.tokens.ActiveTokensForUser(ctx, userID)
	if err != nil {
		s.logger.Errorw("Failed to resolve tokens for user", "user_id", userID, "error", err)
		return false
	}
	return s.sendToTokens(ctx, tokens, title, body, data)
}

func (s *FcmPushSender) SendToTeam(ctx context.Context, teamID, title, body string, data map[string]string) bool {
	tokens, err := s.tokens.ActiveTokensForTeam(ctx, teamID)
	if err != nil {
		s.logger.Errorw("Failed to resolve tokens for team", "team_id", teamID, "error", err)
		return false
	}
	return s.sendToTokens(ctx, tokens, title, body, data)
}

// sendToTokens fans out one send per device and succeeds if any device
// accepted the message.
func (s *FcmPushSender) sendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) bool {
	if len(tokens) == 0 {
		s.logger.Warn("No active device tokens to push to")
		return false
	}

	results := fanOut(len(tokens), func(i int) bool {
		return s.Send(ctx, PushMessage{Token: tokens[i], Title: title, Body: body, Data: data})
	})
	return anyOf(results)
}

func maskToken(token string) string {
	if len(token) < 10 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// MockPushSender stands in when the FCM feature flag is off: it logs the
// would-be delivery and always reports success.
type MockPushSender struct {
	logger *zap.SugaredLogger
}

func NewMockPushSender(logger *zap.SugaredLogger) *MockPushSender {
	return &MockPushSender{logger: logger}
}

func (s *MockPushSender) Send(_ context.Context, msg PushMessage) bool {
	s.logger.Infow("[MOCK FCM] Would send push notification", "title", msg.Title, "body", msg.Body)
	return true
}

func (s *MockPushSender) SendToUser(_ context.Context, userID, title, _ string, _ map[string]string) bool {
	s.logger.Infow("[MOCK FCM] Would send push notification to user", "user_id", userID, "title", title)
	return true
}

func (s *MockPushSender) SendToTeam(_ context.Context, teamID, title, _ string, _ map[string]string) bool {
	s.logger.Infow("[MOCK FCM] Would send push notification to team", "team_id", teamID, "title", title)
	return true
}
