package notify

import (
	"context"
	"sync"

	"incident-service/internal/directory"
)

// TokenSource is the device-token registry surface the push sender needs.
type TokenSource interface {
	ActiveTokensForUser(ctx context.Context, userID string) ([]string, error)
	ActiveTokensForTeam(ctx context.Context, teamID string) ([]string, error)
}

// Directory is the reference-data surface the email/SMS senders need.
type Directory interface {
	UserByID(ctx context.Context, id string) (*directory.User, error)
	TeamMembers(ctx context.Context, teamID string) ([]directory.User, error)
}

type PushMessage struct {
	Token string
	Title string
	Body  string
	Data  map[string]string
}

type EmailMessage struct {
	To      string
	Subject string
	Body    string
	IsHTML  bool
}

// Channel adapters. Every send swallows its own failure and reports a bare
// boolean; nothing here may raise past the dispatcher boundary.
type PushSender interface {
	Send(ctx context.Context, msg PushMessage) bool
	SendToUser(ctx context.Context, userID, title, body string, data map[string]string) bool
	SendToTeam(ctx context.Context, teamID, title, body string, data map[string]string) bool
}

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) bool
	SendToUser(ctx context.Context, userID, subject, body string, isHTML bool) bool
	SendToTeam(ctx context.Context, teamID, subject, body string, isHTML bool) bool
}

type SmsSender interface {
	Send(ctx context.Context, phoneNumber, message string) bool
	SendToUser(ctx context.Context, userID, message string) bool
	SendToTeam(ctx context.Context, teamID, message string) bool
}

// fanOut runs one send per recipient concurrently and collects the
// results. A failing send never cancels its siblings.
func fanOut(n int, send func(i int) bool) []bool {
	results := make([]bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = send(i)
		}(i)
	}
	wg.Wait()
	return results
}

func anyOf(results []bool) bool {
	for _, ok := range results {
		if ok {
			return true
		}
	}
	return false
}

func allOf(results []bool) bool {
	for _, ok := range results {
		if !ok {
			return false
		}
	}
	return len(results) > 0
}
