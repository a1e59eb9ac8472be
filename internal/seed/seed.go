// Package seed загружает стартовые данные доски инцидентов из YAML
// и проверяет их на соответствие инвариантам модели.
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/shenikar/incident_board/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultSeed []byte

// Seed - начальное состояние хранилища
type Seed struct {
	Incidents []*models.Incident
	Units     []*models.EmergencyUnit
}

type incidentRecord struct {
	models.Incident `yaml:",inline"`
	Age             time.Duration `yaml:"age"`
}

type unitRecord struct {
	models.EmergencyUnit `yaml:",inline"`
	UpdatedAgo           time.Duration `yaml:"updated_ago"`
}

type document struct {
	Incidents []incidentRecord `yaml:"incidents"`
	Units     []unitRecord     `yaml:"units"`
}

// Load читает сид из файла, а при пустом пути использует встроенный.
// Относительные возрасты пересчитываются от now.
func Load(path string, now time.Time) (*Seed, error) {
	data := defaultSeed
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file: %w", err)
		}
		data = raw
	}
	return Parse(data, now)
}

// Parse разбирает YAML-документ сида и валидирует результат
func Parse(data []byte, now time.Time) (*Seed, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidSeed, err)
	}

	s := &Seed{
		Incidents: make([]*models.Incident, 0, len(doc.Incidents)),
		Units:     make([]*models.EmergencyUnit, 0, len(doc.Units)),
	}
	for _, rec := range doc.Incidents {
		inc := rec.Incident.Clone()
		inc.Timestamp = now.Add(-rec.Age)
		s.Incidents = append(s.Incidents, inc)
	}
	for _, rec := range doc.Units {
		unit := rec.EmergencyUnit.Clone()
		unit.LastUpdate = now.Add(-rec.UpdatedAgo)
		s.Units = append(s.Units, unit)
	}

	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate проверяет перечисления, уникальность идентификаторов и связи
// между инцидентами и юнитами.
func Validate(s *Seed) error {
	incidents := make(map[string]*models.Incident, len(s.Incidents))
	for _, inc := range s.Incidents {
		if inc.ID == "" {
			return fmt.Errorf("%w: incident without id", models.ErrInvalidSeed)
		}
		if _, dup := incidents[inc.ID]; dup {
			return fmt.Errorf("%w: duplicate incident %s", models.ErrInvalidSeed, inc.ID)
		}
		if !inc.Type.Valid() || !inc.Priority.Valid() || !inc.Status.Valid() {
			return fmt.Errorf("%w: incident %s has unknown type, priority or status", models.ErrInvalidSeed, inc.ID)
		}
		incidents[inc.ID] = inc
	}

	units := make(map[string]*models.EmergencyUnit, len(s.Units))
	for _, unit := range s.Units {
		if unit.ID == "" {
			return fmt.Errorf("%w: unit without id", models.ErrInvalidSeed)
		}
		if _, dup := units[unit.ID]; dup {
			return fmt.Errorf("%w: duplicate unit %s", models.ErrInvalidSeed, unit.ID)
		}
		if !unit.Type.Valid() || !unit.Status.Valid() {
			return fmt.Errorf("%w: unit %s has unknown type or status", models.ErrInvalidSeed, unit.ID)
		}
		units[unit.ID] = unit
	}

	for _, inc := range s.Incidents {
		seen := make(map[string]struct{}, len(inc.AssignedUnits))
		for _, unitID := range inc.AssignedUnits {
			if _, ok := units[unitID]; !ok {
				return fmt.Errorf("%w: incident %s references unknown unit %s", models.ErrInvalidSeed, inc.ID, unitID)
			}
			if _, dup := seen[unitID]; dup {
				return fmt.Errorf("%w: incident %s lists unit %s twice", models.ErrInvalidSeed, inc.ID, unitID)
			}
			seen[unitID] = struct{}{}
		}
	}

	for _, unit := range s.Units {
		if !unit.Status.Deployed() {
			if unit.CurrentAssignment != "" {
				return fmt.Errorf("%w: unit %s is %s but assigned to %s", models.ErrInvalidSeed, unit.ID, unit.Status, unit.CurrentAssignment)
			}
			continue
		}
		inc, ok := incidents[unit.CurrentAssignment]
		if !ok {
			return fmt.Errorf("%w: unit %s is %s without a known assignment", models.ErrInvalidSeed, unit.ID, unit.Status)
		}
		if inc.IsResolved() {
			return fmt.Errorf("%w: unit %s is assigned to resolved incident %s", models.ErrInvalidSeed, unit.ID, inc.ID)
		}
		if !inc.HasUnit(unit.ID) {
			return fmt.Errorf("%w: incident %s does not list assigned unit %s", models.ErrInvalidSeed, inc.ID, unit.ID)
		}
	}
	return nil
}
