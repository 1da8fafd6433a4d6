package alert

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"incident-service/helper"
	"incident-service/internal/directory"
	"incident-service/internal/notify"
)

type fakeTeamResolver struct {
	teams map[string]*directory.Team
	err   error
}

func (r *fakeTeamResolver) TeamByID(_ context.Context, id string) (*directory.Team, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.teams[id], nil
}

type fakeTeamNotifier struct {
	mu      sync.Mutex
	results map[string]bool // team ID -> outcome
	calls   []string
	flags   notify.Flags
}

func (n *fakeTeamNotifier) NotifyTeamAlert(_ context.Context, team directory.Team, _ string, flags notify.Flags) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, team.ID)
	n.flags = flags
	return n.results[team.ID]
}

func newTestAlertService(resolver *fakeTeamResolver, notifier *fakeTeamNotifier) Service {
	return NewAlertService(resolver, notifier, zap.NewNop().Sugar())
}

func twoTeams() *fakeTeamResolver {
	return &fakeTeamResolver{teams: map[string]*directory.Team{
		"t1": {ID: "t1", Name: "Fire Crew"},
		"t2": {ID: "t2", Name: "Medics"},
	}}
}

func TestSendToTeamsValidation(t *testing.T) {
	svc := newTestAlertService(twoTeams(), &fakeTeamNotifier{})

	cases := []struct {
		name string
		req  SendAlertRequest
	}{
		{name: "empty message", req: SendAlertRequest{TeamIDs: []string{"t1"}}},
		{name: "no teams", req: SendAlertRequest{Message: "muster"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.SendToTeams(context.Background(), &tc.req); !errors.Is(err, helper.ErrValidationFailed) {
				t.Errorf("SendToTeams() error = %v, want validation failure", err)
			}
		})
	}
}

func TestSendToTeamsSucceedsIfAnyTeamDelivers(t *testing.T) {
	notifier := &fakeTeamNotifier{results: map[string]bool{"t1": false, "t2": true}}
	svc := newTestAlertService(twoTeams(), notifier)

	delivered, err := svc.SendToTeams(context.Background(), &SendAlertRequest{
		Message: "muster at assembly point B",
		TeamIDs: []string{"t1", "t2"},
	})
	if err != nil {
		t.Fatalf("SendToTeams() error = %v", err)
	}
	if !delivered {
		t.Error("expected success when one team delivered")
	}
	if len(notifier.calls) != 2 {
		t.Errorf("notified teams = %d, want 2", len(notifier.calls))
	}
}

func TestSendToTeamsDropsUnknownTeams(t *testing.T) {
	notifier := &fakeTeamNotifier{results: map[string]bool{"t1": true}}
	svc := newTestAlertService(twoTeams(), notifier)

	delivered, err := svc.SendToTeams(context.Background(), &SendAlertRequest{
		Message: "drill",
		TeamIDs: []string{"ghost-team", "t1"},
	})
	if err != nil {
		t.Fatalf("SendToTeams() error = %v", err)
	}
	if !delivered {
		t.Error("expected success from the known team")
	}
	if len(notifier.calls) != 1 || notifier.calls[0] != "t1" {
		t.Errorf("notified teams = %v, want just t1", notifier.calls)
	}
}

func TestSendToTeamsAllUnknownIsFalseNotError(t *testing.T) {
	svc := newTestAlertService(twoTeams(), &fakeTeamNotifier{})

	delivered, err := svc.SendToTeams(context.Background(), &SendAlertRequest{
		Message: "drill",
		TeamIDs: []string{"ghost-1", "ghost-2"},
	})
	if err != nil {
		t.Fatalf("SendToTeams() error = %v", err)
	}
	if delivered {
		t.Error("expected false when no team resolves")
	}
}

func TestChannelFlagsDefaultToTrue(t *testing.T) {
	notifier := &fakeTeamNotifier{results: map[string]bool{"t1": true}}
	svc := newTestAlertService(twoTeams(), notifier)

	if _, err := svc.SendToTeams(context.Background(), &SendAlertRequest{Message: "m", TeamIDs: []string{"t1"}}); err != nil {
		t.Fatalf("SendToTeams() error = %v", err)
	}
	if !notifier.flags.Push || !notifier.flags.Email || !notifier.flags.Sms {
		t.Errorf("flags = %+v, want all true by default", notifier.flags)
	}

	off := false
	if _, err := svc.SendToTeams(context.Background(), &SendAlertRequest{
		Message:   "m",
		TeamIDs:   []string{"t1"},
		SendEmail: &off,
		SendSms:   &off,
	}); err != nil {
		t.Fatalf("SendToTeams() error = %v", err)
	}
	if !notifier.flags.Push || notifier.flags.Email || notifier.flags.Sms {
		t.Errorf("flags = %+v, want only push", notifier.flags)
	}
}
