package v1

import (
	"time"

	"github.com/google/uuid"
)

// AssignUnitsRequest DTO для назначения юнитов на инцидент
// @Description DTO для назначения юнитов на инцидент
type AssignUnitsRequest struct {
	UnitIDs []string `json:"unit_ids" validate:"required,min=1,dive,required"`
}

// AddNoteRequest DTO для заметки в ленте инцидента
// @Description DTO для заметки в ленте инцидента
type AddNoteRequest struct {
	Text   string `json:"text" validate:"required,max=1000"`
	Source string `json:"source,omitempty" validate:"omitempty,max=64"`
}

// IncidentUpdateResponse DTO для записи ленты инцидента
// @Description DTO для записи ленты инцидента
type IncidentUpdateResponse struct {
	ID         uuid.UUID `json:"id"`
	IncidentID string    `json:"incident_id"`
	Timestamp  time.Time `json:"timestamp"`
	Text       string    `json:"text"`
	Source     string    `json:"source"`
	Type       string    `json:"type"`
}

// LoginRequest DTO для входа в систему
// @Description DTO для входа в систему
type LoginRequest struct {
	Role     string `json:"role" validate:"required"`
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse DTO с подтвержденной ролью и экраном
// @Description DTO с подтвержденной ролью и экраном
type LoginResponse struct {
	Role      string `json:"role"`
	Dashboard string `json:"dashboard"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Priority      string    `json:"priority"`
	PriorityRank  int       `json:"priority_rank"`
	Status        string    `json:"status"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Address       string    `json:"address"`
	Caller        string    `json:"caller,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	AssignedUnits []string  `json:"assigned_units"`
}

// UnitResponse DTO для ответа с информацией о юните
// @Description DTO для ответа с информацией о юните
type UnitResponse struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	Status            string    `json:"status"`
	Location          string    `json:"location"`
	CurrentAssignment string    `json:"current_assignment,omitempty"`
	LastUpdate        time.Time `json:"last_update"`
}

// DispatchLogResponse DTO для записи журнала диспетчеризации
// @Description DTO для записи журнала диспетчеризации
type DispatchLogResponse struct {
	ID         uuid.UUID `json:"id"`
	IncidentID string    `json:"incident_id"`
	UnitID     string    `json:"unit_id"`
	Action     string    `json:"action"`
	Timestamp  time.Time `json:"timestamp"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	ActiveIncidents   int    `json:"active_incidents"`
	CriticalIncidents int    `json:"critical_incidents"`
	AvailableUnits    int    `json:"available_units"`
	DeployedUnits     int    `json:"deployed_units"`
	OnDutyUnits       int    `json:"on_duty_units"`
	AlertLevel        string `json:"alert_level"`
}

// ErrorResponse DTO для ошибки
// @Description DTO для ошибки
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}
