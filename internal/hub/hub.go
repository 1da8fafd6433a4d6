package hub

import (
	"sync"

	"go.uber.org/zap"
)

// Event is the frame delivered to websocket clients.
type Event struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventIncidentCreated      = "incident_created"
	EventIncidentUpdated      = "incident_updated"
	EventIncidentClosed       = "incident_closed"
	EventIncidentAcknowledged = "incident_acknowledged"
	EventNotification         = "notification"
)

// GroupAll receives every broadcast and every incident-scoped event.
const GroupAll = "all"

func UserGroup(userID string) string { return "user:" + userID }

func TeamGroup(teamID string) string { return "team:" + teamID }

func IncidentGroup(incidentID string) string { return "incident:" + incidentID }

// Hub maintains group memberships over live connections: group name to
// connection set and connection to group set, both behind one RWMutex.
// Delivery never happens under the lock.
type Hub struct {
	mu      sync.RWMutex
	groups  map[string]map[*Client]struct{}
	members map[*Client]map[string]struct{}
	logger  *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		groups:  make(map[string]map[*Client]struct{}),
		members: make(map[*Client]map[string]struct{}),
		logger:  logger,
	}
}

// Register adds the client to its initial groups.
func (h *Hub) Register(c *Client, groups ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.members[c]; !ok {
		h.members[c] = make(map[string]struct{})
	}
	for _, g := range groups {
		h.join(c, g)
	}
}

// Unregister removes the client from every group and closes its send
// channel, which terminates the write pump.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	groups, ok := h.members[c]
	if ok {
		for g := range groups {
			h.leave(c, g)
		}
		delete(h.members, c)
	}
	h.mu.Unlock()

	if ok {
		c.close()
	}
}

func (h *Hub) Join(c *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.members[c]; !ok {
		return // already unregistered
	}
	h.join(c, group)
}

func (h *Hub) Leave(c *Client, group string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.members[c]; !ok {
		return
	}
	h.leave(c, group)
}

// Publish delivers the event to every live member of the group. Delivery is
// best-effort: a client whose buffer is full misses the event rather than
// blocking the publisher, and a disconnecting client never fails the send.
func (h *Hub) Publish(group string, ev Event) {
	h.mu.RLock()
	conns := make([]*Client, 0, len(h.groups[group]))
	for c := range h.groups[group] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if !c.enqueue(ev) && h.logger != nil {
			h.logger.Warnw("Dropped event for slow client", "group", group, "event", ev.Event, "user_id", c.UserID)
		}
	}
}

// GroupSize reports live membership, used by tests and diagnostics.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

func (h *Hub) join(c *Client, group string) {
	if group == "" {
		return
	}
	if h.groups[group] == nil {
		h.groups[group] = make(map[*Client]struct{})
	}
	h.groups[group][c] = struct{}{}
	h.members[c][group] = struct{}{}
}

func (h *Hub) leave(c *Client, group string) {
	if set, ok := h.groups[group]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.groups, group)
		}
	}
	delete(h.members[c], group)
}
