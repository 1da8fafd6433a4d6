package notify

import (
	"context"

	"go.uber.org/zap"

	"incident-service/internal/directory"
	"incident-service/internal/hub"
)

// Broadcaster is the websocket surface the dispatcher publishes to.
type Broadcaster interface {
	Publish(group string, ev hub.Event)
}

// Flags selects which channels an alert goes out on.
type Flags struct {
	Push  bool
	Email bool
	Sms   bool
}

// Dispatcher routes incident lifecycle events and operator alerts to the
// websocket hub and the push/email/SMS channel adapters.
type Dispatcher struct {
	hub    Broadcaster
	push   PushSender
	email  EmailSender
	sms    SmsSender
	logger *zap.SugaredLogger
}

func NewDispatcher(h Broadcaster, push PushSender, email EmailSender, sms SmsSender, logger *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{
		hub:    h,
		push:   push,
		email:  email,
		sms:    sms,
		logger: logger,
	}
}

func (d *Dispatcher) IncidentCreated(_ context.Context, incidentID string, payload interface{}) {
	d.publishIncident(hub.EventIncidentCreated, incidentID, payload)
}

func (d *Dispatcher) IncidentUpdated(_ context.Context, incidentID string, payload interface{}) {
	d.publishIncident(hub.EventIncidentUpdated, incidentID, payload)
}

func (d *Dispatcher) IncidentClosed(_ context.Context, incidentID string, payload interface{}) {
	d.publishIncident(hub.EventIncidentClosed, incidentID, payload)
}

func (d *Dispatcher) IncidentAcknowledged(_ context.Context, incidentID string, payload interface{}) {
	d.publishIncident(hub.EventIncidentAcknowledged, incidentID, payload)
}

// Incident-scoped events reach both the incident watchers and the global
// group, so dashboards see everything without subscribing per incident.
func (d *Dispatcher) publishIncident(event, incidentID string, payload interface{}) {
	ev := hub.Event{Event: event, Payload: payload}
	d.hub.Publish(hub.IncidentGroup(incidentID), ev)
	d.hub.Publish(hub.GroupAll, ev)
}

// Plain notifications are hub-only; the push/email/SMS channels fire only
// through explicit alerts.
func (d *Dispatcher) NotifyUser(_ context.Context, userID, message, typ string) {
	d.hub.Publish(hub.UserGroup(userID), notificationEvent(message, typ))
}

func (d *Dispatcher) NotifyTeam(_ context.Context, teamID, message, typ string) {
	d.hub.Publish(hub.TeamGroup(teamID), notificationEvent(message, typ))
}

func (d *Dispatcher) NotifyAll(_ context.Context, message, typ string) {
	d.hub.Publish(hub.GroupAll, notificationEvent(message, typ))
}

// NotifyTeamAlert fans an operator alert out to the team on every enabled
// channel. It reports true if at least one channel delivered; the websocket
// broadcast is fire-and-forget and never counts toward that.
func (d *Dispatcher) NotifyTeamAlert(ctx context.Context, team directory.Team, message string, flags Flags) bool {
	d.hub.Publish(hub.TeamGroup(team.ID), notificationEvent(message, "alert"))

	var results []bool
	if flags.Push {
		results = append(results, d.push.SendToTeam(ctx, team.ID, "EERC Alert", message, map[string]string{
			"type": "alert",
			"team": team.Name,
		}))
	}
	if flags.Email {
		results = append(results, d.email.SendToTeam(ctx, team.ID, "EERC Alert", message, false))
	}
	if flags.Sms {
		results = append(results, d.sms.SendToTeam(ctx, team.ID, message))
	}

	delivered := anyOf(results)
	if !delivered {
		d.logger.Warnw("Alert reached no channel", "team_id", team.ID, "push", flags.Push, "email", flags.Email, "sms", flags.Sms)
	}
	return delivered
}

func notificationEvent(message, typ string) hub.Event {
	return hub.Event{
		Event: hub.EventNotification,
		Payload: map[string]string{
			"message": message,
			"type":    typ,
		},
	}
}
