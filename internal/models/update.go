package models

import (
	"time"

	"github.com/google/uuid"
)

type UpdateType string

const (
	UpdateInfo         UpdateType = "INFO"
	UpdateAlert        UpdateType = "ALERT"
	UpdateStatusChange UpdateType = "STATUS_CHANGE"
)

// Источники записей ленты, которые создает сам сервис
const (
	SourceSystem  = "System"
	SourceCommand = "Command"
)

// IncidentUpdate - запись в ленте событий инцидента
type IncidentUpdate struct {
	ID         uuid.UUID  `json:"id"`
	IncidentID string     `json:"incident_id"`
	Timestamp  time.Time  `json:"timestamp"`
	Text       string     `json:"text"`
	Source     string     `json:"source"`
	Type       UpdateType `json:"type"`
}
