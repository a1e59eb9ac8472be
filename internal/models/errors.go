package models

import "errors"

// Ошибки доменной модели. Слои выше оборачивают их через %w,
// а HTTP-слой сопоставляет через errors.Is.
var (
	ErrInvalidIncident    = errors.New("invalid incident")
	ErrUnitNotAvailable   = errors.New("unit not available")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrIncidentNotFound   = errors.New("incident not found")
	ErrUnitNotFound       = errors.New("unit not found")
	ErrInvalidFilter      = errors.New("invalid incident filter")
	ErrInvalidSeed        = errors.New("invalid seed data")
)
