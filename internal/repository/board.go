package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shenikar/incident_board/internal/models"
	"github.com/shenikar/incident_board/internal/seed"
	"github.com/shenikar/incident_board/internal/service"
)

// BoardRepository хранит инциденты, юниты, журнал диспетчеризации и ленту
// событий в памяти. Все записи проходят под одной блокировкой, поэтому
// назначение вместе с журналом атомарно относительно параллельных запросов.
type BoardRepository struct {
	mu sync.RWMutex

	incidents     map[string]*models.Incident
	incidentOrder []string
	units         map[string]*models.EmergencyUnit
	unitOrder     []string
	dispatchLogs  []*models.DispatchLog
	updates       map[string][]*models.IncidentUpdate
}

// NewBoardRepository наполняет хранилище из проверенного сида
func NewBoardRepository(s *seed.Seed) service.BoardRepository {
	r := &BoardRepository{
		incidents: make(map[string]*models.Incident, len(s.Incidents)),
		units:     make(map[string]*models.EmergencyUnit, len(s.Units)),
		updates:   make(map[string][]*models.IncidentUpdate, len(s.Incidents)),
	}
	for _, inc := range s.Incidents {
		r.incidents[inc.ID] = inc.Clone()
		r.incidentOrder = append(r.incidentOrder, inc.ID)
		// лента начинается с регистрации вызова
		r.updates[inc.ID] = []*models.IncidentUpdate{{
			ID:         uuid.New(),
			IncidentID: inc.ID,
			Timestamp:  inc.Timestamp,
			Text:       "Incident reported.",
			Source:     models.SourceSystem,
			Type:       models.UpdateInfo,
		}}
	}
	for _, unit := range s.Units {
		r.units[unit.ID] = unit.Clone()
		r.unitOrder = append(r.unitOrder, unit.ID)
	}
	return r
}

// ListIncidents возвращает копии всех инцидентов в порядке загрузки
func (r *BoardRepository) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	incidents := make([]*models.Incident, 0, len(r.incidentOrder))
	for _, id := range r.incidentOrder {
		incidents = append(incidents, r.incidents[id].Clone())
	}
	return incidents, nil
}

// GetIncident возвращает копию инцидента по идентификатору
func (r *BoardRepository) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	inc, ok := r.incidents[id]
	if !ok {
		return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrIncidentNotFound)
	}
	return inc.Clone(), nil
}

func (r *BoardRepository) ListUnits(ctx context.Context) ([]*models.EmergencyUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	units := make([]*models.EmergencyUnit, 0, len(r.unitOrder))
	for _, id := range r.unitOrder {
		units = append(units, r.units[id].Clone())
	}
	return units, nil
}

func (r *BoardRepository) GetUnit(ctx context.Context, id string) (*models.EmergencyUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to get unit by id: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	unit, ok := r.units[id]
	if !ok {
		return nil, fmt.Errorf("unit with id %s: %w", id, models.ErrUnitNotFound)
	}
	return unit.Clone(), nil
}

// AssignUnits привязывает юниты к инциденту по принципу "все или ничего":
// сначала проверяются все условия, и только потом меняется состояние.
// Записи DISPATCHED и событие в ленте добавляются в той же критической секции.
func (r *BoardRepository) AssignUnits(ctx context.Context, incidentID string, unitIDs []string, at time.Time) (*models.Incident, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to assign units: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	inc, ok := r.incidents[incidentID]
	if !ok {
		return nil, fmt.Errorf("incident with id %s does not exist: %w", incidentID, models.ErrInvalidIncident)
	}
	if inc.IsResolved() {
		return nil, fmt.Errorf("incident with id %s is resolved: %w", incidentID, models.ErrInvalidIncident)
	}

	for _, unitID := range unitIDs {
		unit, ok := r.units[unitID]
		if !ok {
			return nil, fmt.Errorf("unit with id %s does not exist: %w", unitID, models.ErrUnitNotAvailable)
		}
		if unit.Status != models.UnitAvailable {
			return nil, fmt.Errorf("unit with id %s is %s: %w", unitID, unit.Status, models.ErrUnitNotAvailable)
		}
	}

	assigned := make([]string, 0, len(unitIDs))
	for _, unitID := range unitIDs {
		if slices.Contains(assigned, unitID) {
			continue
		}
		assigned = append(assigned, unitID)

		unit := r.units[unitID]
		unit.Status = models.UnitEnRoute
		unit.CurrentAssignment = incidentID
		unit.LastUpdate = at
		inc.AddUnit(unitID)

		r.dispatchLogs = append(r.dispatchLogs, &models.DispatchLog{
			ID:         uuid.New(),
			IncidentID: incidentID,
			UnitID:     unitID,
			Action:     models.ActionDispatched,
			Timestamp:  at,
		})
	}
	r.updates[incidentID] = append(r.updates[incidentID], &models.IncidentUpdate{
		ID:         uuid.New(),
		IncidentID: incidentID,
		Timestamp:  at,
		Text:       fmt.Sprintf("Units %s dispatched to scene.", strings.Join(assigned, ", ")),
		Source:     models.SourceCommand,
		Type:       models.UpdateStatusChange,
	})
	return inc.Clone(), nil
}

// ListDispatchLogs возвращает журнал по инциденту в порядке записи
func (r *BoardRepository) ListDispatchLogs(ctx context.Context, incidentID string) ([]*models.DispatchLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list dispatch logs: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.incidents[incidentID]; !ok {
		return nil, fmt.Errorf("incident with id %s: %w", incidentID, models.ErrIncidentNotFound)
	}

	logs := make([]*models.DispatchLog, 0)
	for _, entry := range r.dispatchLogs {
		if entry.IncidentID == incidentID {
			c := *entry
			logs = append(logs, &c)
		}
	}
	return logs, nil
}

// ListUpdates возвращает ленту инцидента, новые записи первыми
func (r *BoardRepository) ListUpdates(ctx context.Context, incidentID string) ([]*models.IncidentUpdate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list incident updates: %w", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.incidents[incidentID]; !ok {
		return nil, fmt.Errorf("incident with id %s: %w", incidentID, models.ErrIncidentNotFound)
	}

	stored := r.updates[incidentID]
	updates := make([]*models.IncidentUpdate, 0, len(stored))
	for _, u := range stored {
		c := *u
		updates = append(updates, &c)
	}
	slices.Reverse(updates)
	return updates, nil
}

// AddUpdate дописывает запись в ленту существующего инцидента
func (r *BoardRepository) AddUpdate(ctx context.Context, update *models.IncidentUpdate) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to add incident update: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.incidents[update.IncidentID]; !ok {
		return fmt.Errorf("incident with id %s: %w", update.IncidentID, models.ErrIncidentNotFound)
	}

	c := *update
	r.updates[update.IncidentID] = append(r.updates[update.IncidentID], &c)
	return nil
}
