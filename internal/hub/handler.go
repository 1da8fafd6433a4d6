package hub

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"incident-service/pkg/constants"
)

type clientMessage struct {
	Action     string `json:"action"`
	IncidentID string `json:"incident_id,omitempty"`
	Message    string `json:"message,omitempty"`
	Type       string `json:"type,omitempty"`
}

type Handler struct {
	hub      *Hub
	logger   *zap.SugaredLogger
	upgrader websocket.Upgrader
}

func NewHandler(h *Hub, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		hub:    h,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Token auth already ran in middleware; origin is not the
			// trust boundary for this internal dashboard API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Connect upgrades the request and binds the connection to the caller's
// identity groups: user:{id}, team:{id} when known, and all.
func (h *Handler) Connect(c *gin.Context) {
	userID := c.GetString(constants.UserID)
	teamID := c.GetString(constants.TeamID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("Websocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, userID, teamID)

	groups := []string{UserGroup(userID), GroupAll}
	if teamID != "" {
		groups = append(groups, TeamGroup(teamID))
	}
	h.hub.Register(client, groups...)
	h.logger.Infow("Client connected", "user_id", userID, "team_id", teamID)

	go client.writePump()
	h.readPump(client)
}

// readPump consumes inbound frames until the connection drops, then tears
// down its memberships. Transport errors are the normal disconnect path.
func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
		h.logger.Infow("Client disconnected", "user_id", c.UserID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg clientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnf("Websocket read error for user %s: %v", c.UserID, err)
			}
			return
		}

		switch msg.Action {
		case "subscribe_incident":
			if msg.IncidentID != "" {
				h.hub.Join(c, IncidentGroup(msg.IncidentID))
				h.logger.Infow("Subscribed to incident", "user_id", c.UserID, "incident_id", msg.IncidentID)
			}
		case "unsubscribe_incident":
			if msg.IncidentID != "" {
				h.hub.Leave(c, IncidentGroup(msg.IncidentID))
				h.logger.Infow("Unsubscribed from incident", "user_id", c.UserID, "incident_id", msg.IncidentID)
			}
		case "broadcast":
			h.hub.Publish(GroupAll, broadcastEvent(c.UserID, msg))
		default:
			h.logger.Debugf("Ignoring unknown action %q from user %s", msg.Action, c.UserID)
		}
	}
}

// broadcastEvent relays the client's (message, type) pair to the global
// group, defaulting the type when the client omits it.
func broadcastEvent(from string, msg clientMessage) Event {
	typ := msg.Type
	if typ == "" {
		typ = "info"
	}
	return Event{
		Event: EventNotification,
		Payload: gin.H{
			"message": msg.Message,
			"type":    typ,
			"from":    from,
		},
	}
}
