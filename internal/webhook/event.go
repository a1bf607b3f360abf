package webhook

import (
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/flood_dispatch_system/internal/models"
)

// EventType - тип изменения в леджере
type EventType string

const (
	EventIncidentCreated       EventType = "incident.created"
	EventIncidentStatusChanged EventType = "incident.status_changed"
	EventIncidentDeleted       EventType = "incident.deleted"
	EventDispatchCreated       EventType = "dispatch.created"
)

// WebhookEvent - структура для данных вебхука
type WebhookEvent struct {
	ID         uuid.UUID             `json:"id"`
	Type       EventType             `json:"type"`
	IncidentID string                `json:"incident_id"`
	OldStatus  models.IncidentStatus `json:"old_status,omitempty"`
	Incident   *models.Incident      `json:"incident,omitempty"`
	Dispatch   *models.Dispatch      `json:"dispatch,omitempty"`
	Resources  *models.Resources     `json:"resources,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// NewEvent создает событие с новым идентификатором
func NewEvent(eventType EventType, incidentID string, at time.Time) WebhookEvent {
	return WebhookEvent{
		ID:         uuid.New(),
		Type:       eventType,
		IncidentID: incidentID,
		Timestamp:  at.UTC(),
	}
}
