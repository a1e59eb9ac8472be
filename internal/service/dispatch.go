package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_board/internal/models"
	"github.com/shenikar/incident_board/internal/webhook"
	"github.com/sirupsen/logrus"
)

// BoardRepository определяет контракт хранилища доски инцидентов
type BoardRepository interface {
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	ListUnits(ctx context.Context) ([]*models.EmergencyUnit, error)
	GetUnit(ctx context.Context, id string) (*models.EmergencyUnit, error)
	// AssignUnits вместе с назначением пишет журнал DISPATCHED и ленту инцидента
	AssignUnits(ctx context.Context, incidentID string, unitIDs []string, at time.Time) (*models.Incident, error)
	ListDispatchLogs(ctx context.Context, incidentID string) ([]*models.DispatchLog, error)
	ListUpdates(ctx context.Context, incidentID string) ([]*models.IncidentUpdate, error)
	AddUpdate(ctx context.Context, update *models.IncidentUpdate) error
}

// DispatchService определяет контракт бизнес-логики диспетчера
type DispatchService interface {
	ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error)
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	ListUnits(ctx context.Context, status models.UnitStatus) ([]*models.EmergencyUnit, error)
	GetUnit(ctx context.Context, id string) (*models.EmergencyUnit, error)
	AssignUnits(ctx context.Context, incidentID string, unitIDs []string) (*models.Incident, error)
	DispatchLog(ctx context.Context, incidentID string) ([]*models.DispatchLog, error)
	Timeline(ctx context.Context, incidentID string) ([]*models.IncidentUpdate, error)
	AddNote(ctx context.Context, incidentID, text, source string) (*models.IncidentUpdate, error)
	Stats(ctx context.Context) (*models.BoardStats, error)
}

var (
	// ErrNoUnits возвращается при назначении пустого списка юнитов
	ErrNoUnits = errors.New("at least one unit is required")
	// ErrEmptyNote возвращается при добавлении пустой заметки
	ErrEmptyNote = errors.New("note text is required")
)

type dispatchService struct {
	repo      BoardRepository
	logger    *logrus.Logger
	publisher webhook.Publisher
	now       func() time.Time
}

func NewDispatchService(repo BoardRepository, logger *logrus.Logger, publisher webhook.Publisher) DispatchService {
	return &dispatchService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
		now:       time.Now,
	}
}

// ListIncidents возвращает отфильтрованный и упорядоченный список инцидентов
func (s *dispatchService) ListIncidents(ctx context.Context, filter models.IncidentFilter) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "dispatch",
		"method":  "ListIncidents",
		"filter":  filter.String(),
	})
	log.Debug("Listing incidents")

	incidents, err := s.repo.ListIncidents(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	selected := Select(incidents, filter)
	log.WithField("count", len(selected)).Debug("Incidents listed successfully")
	return selected, nil
}

// GetIncident получает инцидент по ID
func (s *dispatchService) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	incident, err := s.repo.GetIncident(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":     "dispatch",
			"method":      "GetIncident",
			"incident_id": id,
		}).WithError(err).Warn("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}
	return incident, nil
}

// ListUnits возвращает юниты; пустой статус означает все юниты
func (s *dispatchService) ListUnits(ctx context.Context, status models.UnitStatus) ([]*models.EmergencyUnit, error) {
	units, err := s.repo.ListUnits(ctx)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "dispatch",
			"method":  "ListUnits",
		}).WithError(err).Error("Failed to list units from repository")
		return nil, fmt.Errorf("service: could not list units: %w", err)
	}
	if status == "" {
		return units, nil
	}

	filtered := make([]*models.EmergencyUnit, 0, len(units))
	for _, u := range units {
		if u.Status == status {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

func (s *dispatchService) GetUnit(ctx context.Context, id string) (*models.EmergencyUnit, error) {
	unit, err := s.repo.GetUnit(ctx, id)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service": "dispatch",
			"method":  "GetUnit",
			"unit_id": id,
		}).WithError(err).Warn("Failed to get unit from repository")
		return nil, fmt.Errorf("service: could not get unit: %w", err)
	}
	return unit, nil
}

// AssignUnits назначает доступные юниты на инцидент. Повторы в запросе
// схлопываются. Ошибка публикации не отменяет назначение.
func (s *dispatchService) AssignUnits(ctx context.Context, incidentID string, unitIDs []string) (*models.Incident, error) {
	unitIDs = dedupe(unitIDs)
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "AssignUnits",
		"incident_id": incidentID,
		"unit_ids":    unitIDs,
	})
	log.Info("Attempting to assign units")

	if len(unitIDs) == 0 {
		log.Warn("Assignment request without units")
		return nil, fmt.Errorf("service: could not assign units: %w", ErrNoUnits)
	}

	at := s.now()
	incident, err := s.repo.AssignUnits(ctx, incidentID, unitIDs, at)
	if err != nil {
		log.WithError(err).Warn("Assignment rejected")
		return nil, fmt.Errorf("service: could not assign units: %w", err)
	}

	event := webhook.DispatchEvent{
		ID:         uuid.New(),
		Action:     models.ActionDispatched,
		IncidentID: incidentID,
		Priority:   incident.Priority,
		UnitIDs:    unitIDs,
		Timestamp:  at,
	}
	// назначение уже зафиксировано, событие уходит даже после отмены запроса
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.WithError(err).Error("Failed to publish dispatch event")
	}

	log.Info("Units assigned successfully")
	return incident, nil
}

// DispatchLog возвращает журнал диспетчеризации инцидента
func (s *dispatchService) DispatchLog(ctx context.Context, incidentID string) ([]*models.DispatchLog, error) {
	logs, err := s.repo.ListDispatchLogs(ctx, incidentID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":     "dispatch",
			"method":      "DispatchLog",
			"incident_id": incidentID,
		}).WithError(err).Warn("Failed to list dispatch logs")
		return nil, fmt.Errorf("service: could not get dispatch log: %w", err)
	}
	return logs, nil
}

// Timeline возвращает ленту событий инцидента, новые записи первыми
func (s *dispatchService) Timeline(ctx context.Context, incidentID string) ([]*models.IncidentUpdate, error) {
	updates, err := s.repo.ListUpdates(ctx, incidentID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"service":     "dispatch",
			"method":      "Timeline",
			"incident_id": incidentID,
		}).WithError(err).Warn("Failed to list incident updates")
		return nil, fmt.Errorf("service: could not get timeline: %w", err)
	}
	return updates, nil
}

// AddNote добавляет заметку в ленту инцидента. Пустой источник означает Command.
func (s *dispatchService) AddNote(ctx context.Context, incidentID, text, source string) (*models.IncidentUpdate, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "dispatch",
		"method":      "AddNote",
		"incident_id": incidentID,
	})

	text = strings.TrimSpace(text)
	if text == "" {
		log.Warn("Empty note rejected")
		return nil, fmt.Errorf("service: could not add note: %w", ErrEmptyNote)
	}
	source = strings.TrimSpace(source)
	if source == "" {
		source = models.SourceCommand
	}

	update := &models.IncidentUpdate{
		ID:         uuid.New(),
		IncidentID: incidentID,
		Timestamp:  s.now(),
		Text:       text,
		Source:     source,
		Type:       models.UpdateInfo,
	}
	if err := s.repo.AddUpdate(ctx, update); err != nil {
		log.WithError(err).Warn("Failed to add note")
		return nil, fmt.Errorf("service: could not add note: %w", err)
	}

	log.WithField("update_id", update.ID).Info("Note added")
	return update, nil
}

// Stats считает счетчики для шапки дашборда
func (s *dispatchService) Stats(ctx context.Context) (*models.BoardStats, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "dispatch",
		"method":  "Stats",
	})

	incidents, err := s.repo.ListIncidents(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not get stats: %w", err)
	}
	units, err := s.repo.ListUnits(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list units from repository")
		return nil, fmt.Errorf("service: could not get stats: %w", err)
	}

	stats := &models.BoardStats{}
	high := 0
	for _, inc := range incidents {
		if inc.IsResolved() {
			continue
		}
		stats.ActiveIncidents++
		switch inc.Priority {
		case models.PriorityCritical:
			stats.CriticalIncidents++
		case models.PriorityHigh:
			high++
		}
	}
	stats.AlertLevel = models.AlertLevelFor(stats.CriticalIncidents, high)
	for _, u := range units {
		switch {
		case u.Status == models.UnitAvailable:
			stats.AvailableUnits++
		case u.Status.Deployed():
			stats.DeployedUnits++
		}
		if u.Status != models.UnitOffDuty {
			stats.OnDutyUnits++
		}
	}
	return stats, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
