package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/incident_board/internal/config"
	"github.com/shenikar/incident_board/internal/models"
	"github.com/shenikar/incident_board/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	dispatchService service.DispatchService
	verifier        service.CredentialVerifier
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(dispatchService service.DispatchService, verifier service.CredentialVerifier, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		dispatchService: dispatchService,
		verifier:        verifier,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// respondError сопоставляет доменные ошибки с HTTP-статусом и кодом
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidIncident):
		log.WithError(err).Warn("Invalid incident")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "incident does not exist or is resolved", Code: "invalid_incident"})
	case errors.Is(err, models.ErrUnitNotAvailable):
		log.WithError(err).Warn("Unit not available")
		c.JSON(http.StatusConflict, ErrorResponse{Error: "one or more units are not available", Code: "unit_not_available"})
	case errors.Is(err, models.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials or unauthorized role access", Code: "invalid_credentials"})
	case errors.Is(err, models.ErrIncidentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "incident not found", Code: "not_found"})
	case errors.Is(err, models.ErrUnitNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "unit not found", Code: "not_found"})
	case errors.Is(err, models.ErrInvalidFilter), errors.Is(err, service.ErrNoUnits), errors.Is(err, service.ErrEmptyNote):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_failed"})
	default:
		log.WithError(err).Error("Request failed in service")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error", Code: "internal"})
	}
}

// @Summary Get a list of incidents
// @Description Get incidents filtered by priority or status and ordered by priority rank. OPEN returns the dispatch queue.
// @Tags Incidents
// @Produce json
// @Param filter query string false "ALL, OPEN, a priority or a status" default(ALL)
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} ErrorResponse "Unknown filter"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	filter, err := models.ParseFilter(c.Query("filter"))
	if err != nil {
		log.WithError(err).Warn("Invalid filter")
		h.respondError(c, log, err)
		return
	}

	incidents, err := h.dispatchService.ListIncidents(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.dispatchService.GetIncident(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Get dispatch log of an incident
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {array} DispatchLogResponse
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id}/dispatch-log [get]
func (h *Handler) getDispatchLog(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getDispatchLog").WithField("id", id)

	logs, err := h.dispatchService.DispatchLog(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToDispatchLogResponses(logs))
}

// @Summary Get timeline of an incident
// @Description Incident updates and notes, newest first
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident ID"
// @Success 200 {array} IncidentUpdateResponse
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id}/updates [get]
func (h *Handler) getTimeline(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getTimeline").WithField("id", id)

	updates, err := h.dispatchService.Timeline(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentUpdateResponses(updates))
}

// @Summary Add a note to an incident
// @Description Append an INFO note to the incident timeline. Source defaults to Command. Requires API key.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param note body AddNoteRequest true "Note"
// @Success 201 {object} IncidentUpdateResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Router /incidents/{id}/updates [post]
func (h *Handler) addNote(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "addNote").WithField("id", id)

	var input AddNoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "validation_failed"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_failed"})
		return
	}

	update, err := h.dispatchService.AddNote(c.Request.Context(), id, input.Text, input.Source)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentUpdateResponse(update))
}

// @Summary Assign units to an incident
// @Description Assign available units to a non-resolved incident. Either every unit is assigned or none. Requires API key.
// @Tags Dispatch
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Incident ID"
// @Param assignment body AssignUnitsRequest true "Units to assign"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident does not exist or is resolved"
// @Failure 409 {object} ErrorResponse "Unit not available"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id}/assignments [post]
func (h *Handler) assignUnits(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "assignUnits").WithField("id", id)

	var input AssignUnitsRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "validation_failed"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_failed"})
		return
	}

	incident, err := h.dispatchService.AssignUnits(c.Request.Context(), id, input.UnitIDs)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Get a list of units
// @Tags Units
// @Produce json
// @Param status query string false "AVAILABLE, EN_ROUTE, ON_SCENE or OFF_DUTY"
// @Success 200 {array} UnitResponse
// @Failure 400 {object} ErrorResponse "Unknown status"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /units [get]
func (h *Handler) listUnits(c *gin.Context) {
	log := h.logger.WithField("method", "listUnits")

	var status models.UnitStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := models.ParseUnitStatus(raw)
		if err != nil {
			log.WithError(err).Warn("Invalid unit status")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_failed"})
			return
		}
		status = parsed
	}

	units, err := h.dispatchService.ListUnits(c.Request.Context(), status)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToUnitResponses(units))
}

// @Summary Get unit by ID
// @Tags Units
// @Produce json
// @Param id path string true "Unit ID"
// @Success 200 {object} UnitResponse
// @Failure 404 {object} ErrorResponse "Unit not found"
// @Router /units/{id} [get]
func (h *Handler) getUnit(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getUnit").WithField("id", id)

	unit, err := h.dispatchService.GetUnit(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToUnitResponse(unit))
}

// @Summary Get board statistics
// @Description Counters shown in the dashboard header
// @Tags Board
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /board/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	stats, err := h.dispatchService.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToStatsResponse(stats))
}

// @Summary Log in
// @Description Verify role credentials and return the dashboard the role lands on
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login form"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	log := h.logger.WithField("method", "login")

	var input LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "validation_failed"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_failed"})
		return
	}

	role, err := models.ParseRole(input.Role)
	if err != nil {
		// неизвестная роль неотличима от неверного пароля
		h.respondError(c, log, models.ErrInvalidCredentials)
		return
	}

	verified, err := h.verifier.Verify(c.Request.Context(), models.Credentials{
		Role:     role,
		Login:    input.Login,
		Password: input.Password,
	})
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Role: string(verified), Dashboard: verified.Dashboard()})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
