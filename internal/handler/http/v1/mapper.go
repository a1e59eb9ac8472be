package v1

import "github.com/shenikar/incident_board/internal/models"

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	assigned := model.AssignedUnits
	if assigned == nil {
		assigned = []string{}
	}
	return &IncidentResponse{
		ID:            model.ID,
		Type:          string(model.Type),
		Priority:      string(model.Priority),
		PriorityRank:  model.Priority.Rank(),
		Status:        string(model.Status),
		Title:         model.Title,
		Description:   model.Description,
		Address:       model.Address,
		Caller:        model.Caller,
		Timestamp:     model.Timestamp,
		AssignedUnits: assigned,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ModelToUnitResponse(model *models.EmergencyUnit) *UnitResponse {
	return &UnitResponse{
		ID:                model.ID,
		Type:              string(model.Type),
		Status:            string(model.Status),
		Location:          model.Location,
		CurrentAssignment: model.CurrentAssignment,
		LastUpdate:        model.LastUpdate,
	}
}

func ModelsToUnitResponses(models []*models.EmergencyUnit) []*UnitResponse {
	responses := make([]*UnitResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToUnitResponse(model)
	}
	return responses
}

func ModelsToDispatchLogResponses(logs []*models.DispatchLog) []*DispatchLogResponse {
	responses := make([]*DispatchLogResponse, len(logs))
	for i, l := range logs {
		responses[i] = &DispatchLogResponse{
			ID:         l.ID,
			IncidentID: l.IncidentID,
			UnitID:     l.UnitID,
			Action:     string(l.Action),
			Timestamp:  l.Timestamp,
		}
	}
	return responses
}

func ModelToIncidentUpdateResponse(u *models.IncidentUpdate) *IncidentUpdateResponse {
	return &IncidentUpdateResponse{
		ID:         u.ID,
		IncidentID: u.IncidentID,
		Timestamp:  u.Timestamp,
		Text:       u.Text,
		Source:     u.Source,
		Type:       string(u.Type),
	}
}

func ModelsToIncidentUpdateResponses(updates []*models.IncidentUpdate) []*IncidentUpdateResponse {
	responses := make([]*IncidentUpdateResponse, len(updates))
	for i, u := range updates {
		responses[i] = ModelToIncidentUpdateResponse(u)
	}
	return responses
}

func ModelToStatsResponse(stats *models.BoardStats) StatsResponse {
	return StatsResponse{
		ActiveIncidents:   stats.ActiveIncidents,
		CriticalIncidents: stats.CriticalIncidents,
		AvailableUnits:    stats.AvailableUnits,
		DeployedUnits:     stats.DeployedUnits,
		OnDutyUnits:       stats.OnDutyUnits,
		AlertLevel:        string(stats.AlertLevel),
	}
}
