package notify

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"incident-service/internal/directory"
	"incident-service/internal/hub"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	group string
	event string
}

func (b *recordingBroadcaster) Publish(group string, ev hub.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{group: group, event: ev.Event})
}

func (b *recordingBroadcaster) has(group, event string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, e := range b.events {
		if e.group == group && e.event == event {
			return true
		}
	}
	return false
}

type stubPushSender struct {
	result bool
	calls  int
}

func (s *stubPushSender) Send(context.Context, PushMessage) bool { return s.result }
func (s *stubPushSender) SendToUser(context.Context, string, string, string, map[string]string) bool {
	s.calls++
	return s.result
}
func (s *stubPushSender) SendToTeam(context.Context, string, string, string, map[string]string) bool {
	s.calls++
	return s.result
}

type stubEmailSender struct {
	result bool
	calls  int
}

func (s *stubEmailSender) Send(context.Context, EmailMessage) bool { return s.result }
func (s *stubEmailSender) SendToUser(context.Context, string, string, string, bool) bool {
	s.calls++
	return s.result
}
func (s *stubEmailSender) SendToTeam(context.Context, string, string, string, bool) bool {
	s.calls++
	return s.result
}

type stubSmsSender struct {
	result bool
	calls  int
}

func (s *stubSmsSender) Send(context.Context, string, string) bool { return s.result }
func (s *stubSmsSender) SendToUser(context.Context, string, string) bool {
	s.calls++
	return s.result
}
func (s *stubSmsSender) SendToTeam(context.Context, string, string) bool {
	s.calls++
	return s.result
}

func newTestDispatcher(push *stubPushSender, email *stubEmailSender, sms *stubSmsSender) (*Dispatcher, *recordingBroadcaster) {
	b := &recordingBroadcaster{}
	return NewDispatcher(b, push, email, sms, zap.NewNop().Sugar()), b
}

func TestIncidentEventsReachIncidentAndGlobalGroups(t *testing.T) {
	d, b := newTestDispatcher(&stubPushSender{}, &stubEmailSender{}, &stubSmsSender{})

	d.IncidentCreated(context.Background(), "inc-1", map[string]string{"id": "inc-1"})

	if !b.has(hub.IncidentGroup("inc-1"), hub.EventIncidentCreated) {
		t.Error("expected incident_created on the incident group")
	}
	if !b.has(hub.GroupAll, hub.EventIncidentCreated) {
		t.Error("expected incident_created on the global group")
	}
}

func TestNotifyUserIsHubOnly(t *testing.T) {
	push := &stubPushSender{result: true}
	d, b := newTestDispatcher(push, &stubEmailSender{}, &stubSmsSender{})

	d.NotifyUser(context.Background(), "u1", "shift change", "info")

	if !b.has(hub.UserGroup("u1"), hub.EventNotification) {
		t.Error("expected notification on the user group")
	}
	if push.calls != 0 {
		t.Errorf("push calls = %d, want 0 for a plain notification", push.calls)
	}
}

func TestTeamAlertSucceedsWhenAnyChannelDelivers(t *testing.T) {
	cases := []struct {
		name  string
		push  bool
		email bool
		sms   bool
		flags Flags
		want  bool
	}{
		{name: "sms saves the day", push: false, email: false, sms: true, flags: Flags{Push: true, Email: true, Sms: true}, want: true},
		{name: "all channels fail", push: false, email: false, sms: false, flags: Flags{Push: true, Email: true, Sms: true}, want: false},
		{name: "push alone", push: true, email: false, sms: false, flags: Flags{Push: true}, want: true},
		{name: "no channels enabled", push: true, email: true, sms: true, flags: Flags{}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newTestDispatcher(&stubPushSender{result: tc.push}, &stubEmailSender{result: tc.email}, &stubSmsSender{result: tc.sms})

			got := d.NotifyTeamAlert(context.Background(), directory.Team{ID: "t1", Name: "Fire Crew"}, "muster now", tc.flags)
			if got != tc.want {
				t.Errorf("NotifyTeamAlert() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTeamAlertSkipsDisabledChannels(t *testing.T) {
	push := &stubPushSender{result: true}
	email := &stubEmailSender{result: true}
	sms := &stubSmsSender{result: true}
	d, b := newTestDispatcher(push, email, sms)

	d.NotifyTeamAlert(context.Background(), directory.Team{ID: "t1", Name: "Fire Crew"}, "drill", Flags{Push: true})

	if push.calls != 1 {
		t.Errorf("push calls = %d, want 1", push.calls)
	}
	if email.calls != 0 || sms.calls != 0 {
		t.Errorf("disabled channels were called: email=%d sms=%d", email.calls, sms.calls)
	}
	if !b.has(hub.TeamGroup("t1"), hub.EventNotification) {
		t.Error("expected websocket alert on the team group regardless of flags")
	}
}

func TestTeamAlertHubDeliveryDoesNotCountAsSuccess(t *testing.T) {
	d, b := newTestDispatcher(&stubPushSender{result: false}, &stubEmailSender{result: false}, &stubSmsSender{result: false})

	got := d.NotifyTeamAlert(context.Background(), directory.Team{ID: "t1"}, "test", Flags{Push: true, Email: true, Sms: true})

	if got {
		t.Error("expected failure when every channel adapter fails")
	}
	if !b.has(hub.TeamGroup("t1"), hub.EventNotification) {
		t.Error("expected the websocket broadcast to still go out")
	}
}
