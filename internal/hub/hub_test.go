package hub

import (
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(userID string) *Client {
	return &Client{
		UserID: userID,
		send:   make(chan Event, sendBuffer),
	}
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient("u1")

	h.Register(c, UserGroup("u1"), GroupAll)
	if h.GroupSize(GroupAll) != 1 {
		t.Errorf("expected 1 member in all, got %d", h.GroupSize(GroupAll))
	}
	if h.GroupSize(UserGroup("u1")) != 1 {
		t.Errorf("expected 1 member in user group, got %d", h.GroupSize(UserGroup("u1")))
	}

	h.Unregister(c)
	if h.GroupSize(GroupAll) != 0 {
		t.Errorf("expected empty all group after unregister, got %d", h.GroupSize(GroupAll))
	}

	// Send channel must be closed so the write pump exits.
	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected send channel to be closed")
		}
	default:
		t.Error("send channel should be closed and readable")
	}
}

func TestHub_PublishReachesGroupMembers(t *testing.T) {
	h := NewHub(nil)
	inTeam := newTestClient("u1")
	outside := newTestClient("u2")

	h.Register(inTeam, TeamGroup("t1"))
	h.Register(outside, TeamGroup("t2"))

	h.Publish(TeamGroup("t1"), Event{Event: EventNotification, Payload: "hello"})

	select {
	case ev := <-inTeam.send:
		if ev.Event != EventNotification {
			t.Errorf("expected %s, got %s", EventNotification, ev.Event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}

	select {
	case ev := <-outside.send:
		t.Errorf("client outside group received %v", ev)
	default:
	}
}

func TestHub_JoinAndLeaveIncidentGroup(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient("u1")
	h.Register(c, GroupAll)

	h.Join(c, IncidentGroup("inc1"))
	if h.GroupSize(IncidentGroup("inc1")) != 1 {
		t.Fatalf("expected membership after join")
	}

	h.Leave(c, IncidentGroup("inc1"))
	if h.GroupSize(IncidentGroup("inc1")) != 0 {
		t.Errorf("expected empty group after leave")
	}

	h.Unregister(c)
}

func TestHub_SlowClientDoesNotBlockPublish(t *testing.T) {
	h := NewHub(nil)
	slow := newTestClient("u1")
	h.Register(slow, GroupAll)

	// Fill the buffer; further publishes must drop, not block.
	for i := 0; i < sendBuffer+10; i++ {
		h.Publish(GroupAll, Event{Event: EventNotification})
	}

	if len(slow.send) != sendBuffer {
		t.Errorf("expected full buffer of %d, got %d", sendBuffer, len(slow.send))
	}

	h.Unregister(slow)
}

func TestHub_PublishAfterUnregisterIsSafe(t *testing.T) {
	h := NewHub(nil)
	c := newTestClient("u1")
	h.Register(c, GroupAll)
	h.Unregister(c)

	// Must not panic or deliver to the closed client.
	h.Publish(GroupAll, Event{Event: EventNotification})
}

func TestBroadcastEventRelaysClientType(t *testing.T) {
	ev := broadcastEvent("u1", clientMessage{Action: "broadcast", Message: "muster", Type: "warning"})
	payload := ev.Payload.(gin.H)
	if payload["type"] != "warning" || payload["message"] != "muster" || payload["from"] != "u1" {
		t.Errorf("payload = %v, want the client's message/type relayed", payload)
	}

	ev = broadcastEvent("u1", clientMessage{Action: "broadcast", Message: "hello"})
	payload = ev.Payload.(gin.H)
	if payload["type"] != "info" {
		t.Errorf("type = %v, want info when the client omits it", payload["type"])
	}
}

func TestHub_ConcurrentMembershipChurn(t *testing.T) {
	h := NewHub(nil)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := newTestClient("u")
			h.Register(c, GroupAll, TeamGroup("t1"))
			h.Join(c, IncidentGroup("inc1"))
			h.Publish(IncidentGroup("inc1"), Event{Event: EventIncidentUpdated})
			h.Leave(c, IncidentGroup("inc1"))
			h.Unregister(c)
		}()
	}
	wg.Wait()

	if h.GroupSize(GroupAll) != 0 {
		t.Errorf("expected empty hub after churn, got %d members", h.GroupSize(GroupAll))
	}
}
