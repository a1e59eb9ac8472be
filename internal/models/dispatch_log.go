package models

import (
	"time"

	"github.com/google/uuid"
)

type DispatchAction string

const (
	ActionDispatched DispatchAction = "DISPATCHED"
	ActionReassigned DispatchAction = "REASSIGNED"
	ActionRecalled   DispatchAction = "RECALLED"
)

// DispatchLog - запись журнала диспетчеризации
type DispatchLog struct {
	ID         uuid.UUID      `json:"id"`
	IncidentID string         `json:"incident_id"`
	UnitID     string         `json:"unit_id"`
	Action     DispatchAction `json:"action"`
	Timestamp  time.Time      `json:"timestamp"`
}

// AlertLevel - общий уровень тревоги на доске
type AlertLevel string

const (
	AlertGreen  AlertLevel = "GREEN"
	AlertYellow AlertLevel = "YELLOW"
	AlertRed    AlertLevel = "RED"
)

// AlertLevelFor: RED при активных CRITICAL, YELLOW при активных HIGH
func AlertLevelFor(critical, high int) AlertLevel {
	switch {
	case critical > 0:
		return AlertRed
	case high > 0:
		return AlertYellow
	}
	return AlertGreen
}

// BoardStats - счетчики для шапки дашборда
type BoardStats struct {
	ActiveIncidents   int        `json:"active_incidents"`
	CriticalIncidents int        `json:"critical_incidents"`
	AvailableUnits    int        `json:"available_units"`
	DeployedUnits     int        `json:"deployed_units"`
	OnDutyUnits       int        `json:"on_duty_units"`
	AlertLevel        AlertLevel `json:"alert_level"`
}
