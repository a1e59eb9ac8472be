package service

import (
	"slices"
	"strings"

	"github.com/shenikar/incident_board/internal/models"
)

// Select строит упорядоченный список для отображения. Входной срез не меняется.
// Очередь диспетчера (OPEN) упорядочена по приоритету и затем по времени,
// остальные списки - только по приоритету с сохранением исходного порядка.
func Select(incidents []*models.Incident, filter models.IncidentFilter) []*models.Incident {
	selected := make([]*models.Incident, 0, len(incidents))
	for _, inc := range incidents {
		if filter.Match(inc) {
			selected = append(selected, inc)
		}
	}
	if filter.Kind == models.FilterOpen {
		SortForDispatch(selected)
	} else {
		SortByPriority(selected)
	}
	return selected
}

// SortByPriority - стабильная сортировка по убыванию ранга приоритета
func SortByPriority(incidents []*models.Incident) {
	slices.SortStableFunc(incidents, func(a, b *models.Incident) int {
		return b.Priority.Rank() - a.Priority.Rank()
	})
}

// SortForDispatch сортирует по убыванию ранга, затем более старые раньше
func SortForDispatch(incidents []*models.Incident) {
	slices.SortStableFunc(incidents, func(a, b *models.Incident) int {
		if d := b.Priority.Rank() - a.Priority.Rank(); d != 0 {
			return d
		}
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
