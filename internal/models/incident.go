package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type IncidentType string

const (
	IncidentFire    IncidentType = "FIRE"
	IncidentMedical IncidentType = "MEDICAL"
	IncidentPolice  IncidentType = "POLICE"
	IncidentTraffic IncidentType = "TRAFFIC"
	IncidentHazard  IncidentType = "HAZARD"
)

func (t IncidentType) Valid() bool {
	switch t {
	case IncidentFire, IncidentMedical, IncidentPolice, IncidentTraffic, IncidentHazard:
		return true
	}
	return false
}

type IncidentStatus string

const (
	StatusActive        IncidentStatus = "ACTIVE"
	StatusEnRoute       IncidentStatus = "EN_ROUTE"
	StatusResolved      IncidentStatus = "RESOLVED"
	StatusInvestigating IncidentStatus = "INVESTIGATING"
	StatusContained     IncidentStatus = "CONTAINED"
)

func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusActive, StatusEnRoute, StatusResolved, StatusInvestigating, StatusContained:
		return true
	}
	return false
}

// ParseIncidentStatus разбирает статус без учета регистра
func ParseIncidentStatus(s string) (IncidentStatus, error) {
	status := IncidentStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown incident status %q", s)
	}
	return status, nil
}

// Incident - происшествие на доске диспетчера
type Incident struct {
	ID            string         `json:"id" yaml:"id"`
	Type          IncidentType   `json:"type" yaml:"type"`
	Priority      Priority       `json:"priority" yaml:"priority"`
	Status        IncidentStatus `json:"status" yaml:"status"`
	Title         string         `json:"title" yaml:"title"`
	Description   string         `json:"description" yaml:"description"`
	Address       string         `json:"address" yaml:"address"`
	Caller        string         `json:"caller,omitempty" yaml:"caller"`
	Timestamp     time.Time      `json:"timestamp" yaml:"-"`
	AssignedUnits []string       `json:"assigned_units" yaml:"assigned_units"`
}

// IsResolved сообщает, исключается ли инцидент из активных представлений
func (i *Incident) IsResolved() bool {
	return i.Status == StatusResolved
}

// HasUnit проверяет, числится ли юнит в списке назначенных
func (i *Incident) HasUnit(unitID string) bool {
	return slices.Contains(i.AssignedUnits, unitID)
}

// AddUnit добавляет юнит в список назначенных, дубликаты игнорируются
func (i *Incident) AddUnit(unitID string) {
	if !i.HasUnit(unitID) {
		i.AssignedUnits = append(i.AssignedUnits, unitID)
	}
}

// Clone возвращает глубокую копию, не разделяющую срез AssignedUnits
func (i *Incident) Clone() *Incident {
	c := *i
	c.AssignedUnits = slices.Clone(i.AssignedUnits)
	if c.AssignedUnits == nil {
		c.AssignedUnits = []string{}
	}
	return &c
}
