package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/shenikar/flood_dispatch_system/internal/config"
	"github.com/shenikar/flood_dispatch_system/internal/ledger"
	"github.com/shenikar/flood_dispatch_system/internal/models"
	"github.com/shenikar/flood_dispatch_system/internal/observability"
	"github.com/shenikar/flood_dispatch_system/internal/webhook"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=incident.go -destination=mocks/mock_incident.go -package=mocks

var (
	// ErrInvalidStatus - неизвестный целевой статус (только в строгом режиме)
	ErrInvalidStatus = errors.New("invalid incident status")
	// ErrInvalidIncident - инцидент без обязательных полей (только в строгом режиме)
	ErrInvalidIncident = errors.New("invalid incident")
	// ErrUnknownAction - неизвестный тег действия (только в строгом режиме)
	ErrUnknownAction = errors.New("unknown action")
)

// Ledger определяет контракт хранилища инцидентов, выездов и ресурсов
type Ledger interface {
	Snapshot() models.Snapshot
	CreateIncident(in models.IncidentInput) (models.Incident, models.Snapshot)
	UpdateIncidentStatus(id string, status models.IncidentStatus) (ledger.StatusChange, models.Snapshot)
	DeleteIncident(id string) (ledger.Outcome, models.Snapshot)
}

// IncidentService определяет контракт бизнес-логики управления инцидентами
type IncidentService interface {
	GetSnapshot(ctx context.Context) models.Snapshot
	CreateIncident(ctx context.Context, in models.IncidentInput) (models.Snapshot, error)
	UpdateIncidentStatus(ctx context.Context, id string, status models.IncidentStatus) (models.Snapshot, error)
	DeleteIncident(ctx context.Context, id string) (models.Snapshot, error)
	StrictValidation() bool
	CheckEventSink(ctx context.Context) error
}

type incidentService struct {
	ledger    Ledger
	logger    *logrus.Logger
	cfg       *config.Config
	publisher webhook.WebhookPublisher
	metrics   *observability.Metrics
	clock     clockwork.Clock
}

func NewIncidentService(
	l Ledger,
	logger *logrus.Logger,
	cfg *config.Config,
	publisher webhook.WebhookPublisher,
	metrics *observability.Metrics,
	clock clockwork.Clock,
) IncidentService {
	return &incidentService{
		ledger:    l,
		logger:    logger,
		cfg:       cfg,
		publisher: publisher,
		metrics:   metrics,
		clock:     clock,
	}
}

// GetSnapshot возвращает полное состояние леджера
func (s *incidentService) GetSnapshot(ctx context.Context) models.Snapshot {
	snap := s.ledger.Snapshot()
	s.logger.WithFields(logrus.Fields{
		"service":    "incident",
		"method":     "GetSnapshot",
		"incidents":  len(snap.Incidents),
		"dispatches": len(snap.Dispatches),
	}).Debug("Snapshot read")
	return snap
}

// CreateIncident создает инцидент
func (s *incidentService) CreateIncident(ctx context.Context, in models.IncidentInput) (models.Snapshot, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "CreateIncident",
		"location": in.Location,
	})
	log.Info("Attempting to create a new incident")

	if s.cfg.StrictValidation && strings.TrimSpace(in.Location) == "" {
		log.Warn("Rejected incident without location")
		s.metrics.LedgerOperations.WithLabelValues("create", "rejected").Inc()
		return models.Snapshot{}, fmt.Errorf("service: location is required: %w", ErrInvalidIncident)
	}

	incident, snap := s.ledger.CreateIncident(in)
	s.metrics.LedgerOperations.WithLabelValues("create", ledger.Applied.String()).Inc()
	log.WithField("incident_id", incident.ID).Info("Incident created successfully")

	event := webhook.NewEvent(webhook.EventIncidentCreated, incident.ID, s.clock.Now())
	event.Incident = &incident
	s.publish(ctx, event)

	return snap, nil
}

// UpdateIncidentStatus меняет статус инцидента. Отсутствующий инцидент не ошибка.
func (s *incidentService) UpdateIncidentStatus(ctx context.Context, id string, status models.IncidentStatus) (models.Snapshot, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateIncidentStatus",
		"incident_id": id,
		"status":      status,
	})
	log.Info("Attempting to update incident status")

	if s.cfg.StrictValidation && !status.Valid() {
		log.Warn("Rejected unknown incident status")
		s.metrics.LedgerOperations.WithLabelValues("update_status", "rejected").Inc()
		return models.Snapshot{}, fmt.Errorf("service: status %q: %w", status, ErrInvalidStatus)
	}

	change, snap := s.ledger.UpdateIncidentStatus(id, status)
	s.metrics.LedgerOperations.WithLabelValues("update_status", change.Outcome.String()).Inc()
	if change.Outcome == ledger.NotFound {
		log.Warn("Attempted to update a non-existent incident")
		return snap, nil
	}

	log = log.WithField("old_status", change.OldStatus)
	if change.Dispatch != nil {
		s.metrics.Dispatches.WithLabelValues(string(change.Vehicle)).Inc()
		log = log.WithFields(logrus.Fields{
			"dispatch_id": change.Dispatch.ID,
			"team":        change.Dispatch.Team,
		})
	}
	if len(change.Restored) > 0 {
		log = log.WithField("restored", change.Restored)
	}
	log.Info("Incident status updated successfully")

	now := s.clock.Now()
	event := webhook.NewEvent(webhook.EventIncidentStatusChanged, id, now)
	event.OldStatus = change.OldStatus
	event.Incident = &change.Incident
	event.Resources = &snap.Resources
	s.publish(ctx, event)

	if change.Dispatch != nil {
		dispatched := webhook.NewEvent(webhook.EventDispatchCreated, id, now)
		dispatched.Dispatch = change.Dispatch
		dispatched.Resources = &snap.Resources
		s.publish(ctx, dispatched)
	}

	return snap, nil
}

// DeleteIncident архивирует инцидент. Ресурсы и журнал выездов не меняются.
func (s *incidentService) DeleteIncident(ctx context.Context, id string) (models.Snapshot, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "DeleteIncident",
		"incident_id": id,
	})
	log.Info("Attempting to archive incident")

	outcome, snap := s.ledger.DeleteIncident(id)
	s.metrics.LedgerOperations.WithLabelValues("delete", outcome.String()).Inc()
	if outcome == ledger.NotFound {
		log.Warn("Attempted to archive a non-existent incident")
		return snap, nil
	}
	log.Info("Incident archived successfully")

	s.publish(ctx, webhook.NewEvent(webhook.EventIncidentDeleted, id, s.clock.Now()))
	return snap, nil
}

// StrictValidation сообщает, включен ли строгий режим проверки
func (s *incidentService) StrictValidation() bool {
	return s.cfg.StrictValidation
}

// CheckEventSink проверяет доступность приемника событий
func (s *incidentService) CheckEventSink(ctx context.Context) error {
	if err := s.publisher.Ping(ctx); err != nil {
		return fmt.Errorf("service: event sink %s unavailable: %w", s.publisher.Name(), err)
	}
	return nil
}

// publish отправляет событие; ошибка приемника не влияет на результат операции
func (s *incidentService) publish(ctx context.Context, event webhook.WebhookEvent) {
	sink := s.publisher.Name()
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event_type":  event.Type,
			"incident_id": event.IncidentID,
			"sink":        sink,
		}).Error("Failed to publish ledger event")
		s.metrics.EventsPublished.WithLabelValues(sink, "error").Inc()
		return
	}
	s.metrics.EventsPublished.WithLabelValues(sink, "success").Inc()
}
