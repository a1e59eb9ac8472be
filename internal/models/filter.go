package models

import (
	"fmt"
	"strings"
)

// FilterKind определяет, по какому признаку отбираются инциденты
type FilterKind int

const (
	FilterAll FilterKind = iota
	FilterPriority
	FilterStatus
	// FilterOpen - очередь диспетчера: все нерешенные инциденты
	FilterOpen
)

// IncidentFilter - критерий отбора для списка инцидентов
type IncidentFilter struct {
	Kind     FilterKind
	Priority Priority
	Status   IncidentStatus
}

func (f IncidentFilter) String() string {
	switch f.Kind {
	case FilterPriority:
		return string(f.Priority)
	case FilterStatus:
		return string(f.Status)
	case FilterOpen:
		return "OPEN"
	}
	return "ALL"
}

// ParseFilter разбирает значение фильтра: ALL, OPEN, имя приоритета или статуса.
// Пустая строка равна ALL.
func ParseFilter(s string) (IncidentFilter, error) {
	value := strings.ToUpper(strings.TrimSpace(s))
	switch value {
	case "", "ALL":
		return IncidentFilter{Kind: FilterAll}, nil
	case "OPEN":
		return IncidentFilter{Kind: FilterOpen}, nil
	}
	if p, err := ParsePriority(value); err == nil {
		return IncidentFilter{Kind: FilterPriority, Priority: p}, nil
	}
	if st, err := ParseIncidentStatus(value); err == nil {
		return IncidentFilter{Kind: FilterStatus, Status: st}, nil
	}
	return IncidentFilter{}, fmt.Errorf("filter %q: %w", s, ErrInvalidFilter)
}

// Match сообщает, проходит ли инцидент через фильтр
func (f IncidentFilter) Match(inc *Incident) bool {
	switch f.Kind {
	case FilterPriority:
		return inc.Priority == f.Priority
	case FilterStatus:
		return inc.Status == f.Status
	case FilterOpen:
		return !inc.IsResolved()
	}
	return true
}
