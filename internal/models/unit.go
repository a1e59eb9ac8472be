package models

import (
	"fmt"
	"strings"
	"time"
)

type UnitType string

const (
	UnitPolice    UnitType = "POLICE"
	UnitFire      UnitType = "FIRE"
	UnitAmbulance UnitType = "AMBULANCE"
)

func (t UnitType) Valid() bool {
	switch t {
	case UnitPolice, UnitFire, UnitAmbulance:
		return true
	}
	return false
}

type UnitStatus string

const (
	UnitAvailable UnitStatus = "AVAILABLE"
	UnitEnRoute   UnitStatus = "EN_ROUTE"
	UnitOnScene   UnitStatus = "ON_SCENE"
	UnitOffDuty   UnitStatus = "OFF_DUTY"
)

func (s UnitStatus) Valid() bool {
	switch s {
	case UnitAvailable, UnitEnRoute, UnitOnScene, UnitOffDuty:
		return true
	}
	return false
}

// Deployed - юнит выехал или работает на месте и обязан иметь назначение
func (s UnitStatus) Deployed() bool {
	return s == UnitEnRoute || s == UnitOnScene
}

// ParseUnitStatus разбирает статус юнита без учета регистра
func ParseUnitStatus(s string) (UnitStatus, error) {
	status := UnitStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.Valid() {
		return "", fmt.Errorf("unknown unit status %q", s)
	}
	return status, nil
}

// EmergencyUnit - экипаж экстренной службы
type EmergencyUnit struct {
	ID                string     `json:"id" yaml:"id"`
	Type              UnitType   `json:"type" yaml:"type"`
	Status            UnitStatus `json:"status" yaml:"status"`
	Location          string     `json:"location" yaml:"location"`
	CurrentAssignment string     `json:"current_assignment,omitempty" yaml:"current_assignment"`
	LastUpdate        time.Time  `json:"last_update" yaml:"-"`
}

func (u *EmergencyUnit) Clone() *EmergencyUnit {
	c := *u
	return &c
}
