package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/incident_board/internal/config"
	"github.com/shenikar/incident_board/internal/models"
	"github.com/shenikar/incident_board/internal/service"
	"github.com/shenikar/incident_board/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var apiKeyHeader = map[string]string{"X-API-Key": "test-api-key"}

// newTestHandler создает новый экземпляр Handler с мокированными сервисами
func newTestHandler(t *testing.T) (*mocks.MockDispatchService, *mocks.MockCredentialVerifier, *gin.Engine) {
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockDispatchService(ctrl)
	mockVerifier := mocks.NewMockCredentialVerifier(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах

	cfg := &config.Config{
		APIKeys: []string{"test-api-key"},
	}

	handler := NewHandler(mockService, mockVerifier, logger, cfg)

	// Настройка Gin роутера для тестов
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)

	return mockService, mockVerifier, router
}

// makeRequest - вспомогательная функция для выполнения HTTP-запросов
func makeRequest(router *gin.Engine, method, url string, body io.Reader, headers ...map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for key, value := range h {
			req.Header.Set(key, value)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestListIncidents_DefaultFilter(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	incidents := []*models.Incident{
		{ID: "INC-2", Priority: models.PriorityCritical, Status: models.StatusActive},
		{ID: "INC-1", Priority: models.PriorityHigh, Status: models.StatusActive},
	}

	mockService.EXPECT().
		ListIncidents(gomock.Any(), models.IncidentFilter{Kind: models.FilterAll}).
		Return(incidents, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "INC-2", resp[0].ID)
	assert.Equal(t, 3, resp[0].PriorityRank)
	assert.NotNil(t, resp[0].AssignedUnits)
}

func TestListIncidents_FilterParsed(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		ListIncidents(gomock.Any(), models.IncidentFilter{Kind: models.FilterPriority, Priority: models.PriorityCritical}).
		Return([]*models.Incident{}, nil).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents?filter=critical", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListIncidents_InvalidFilter(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().ListIncidents(gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	w := makeRequest(router, "GET", "/api/v1/incidents?filter=URGENT", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", decodeError(t, w).Code)
}

func TestGetIncident_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	incident := &models.Incident{
		ID:            "INC-2547",
		Type:          models.IncidentFire,
		Priority:      models.PriorityCritical,
		Status:        models.StatusActive,
		Title:         "Structure Fire",
		Timestamp:     ts,
		AssignedUnits: []string{"FIRE-3", "FIRE-5"},
	}

	mockService.EXPECT().GetIncident(gomock.Any(), "INC-2547").Return(incident, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/INC-2547", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INC-2547", resp.ID)
	assert.Equal(t, "FIRE", resp.Type)
	assert.Equal(t, ts, resp.Timestamp)
	assert.Equal(t, []string{"FIRE-3", "FIRE-5"}, resp.AssignedUnits)
}

func TestGetIncident_NotFound(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	serviceError := fmt.Errorf("service: could not get incident: %w", models.ErrIncidentNotFound)

	mockService.EXPECT().GetIncident(gomock.Any(), "INC-404").Return(nil, serviceError).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/INC-404", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Code)
}

func TestAssignUnits_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	updated := &models.Incident{
		ID:            "INC-1",
		Priority:      models.PriorityHigh,
		Status:        models.StatusActive,
		AssignedUnits: []string{"PD-15"},
	}

	mockService.EXPECT().
		AssignUnits(gomock.Any(), "INC-1", []string{"PD-15"}).
		Return(updated, nil).
		Times(1)

	bodyBytes, _ := json.Marshal(AssignUnitsRequest{UnitIDs: []string{"PD-15"}})
	w := makeRequest(router, "POST", "/api/v1/incidents/INC-1/assignments", bytes.NewBuffer(bodyBytes), apiKeyHeader)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"PD-15"}, resp.AssignedUnits)
}

func TestAssignUnits_DomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "invalid incident",
			err:        fmt.Errorf("service: could not assign units: %w", models.ErrInvalidIncident),
			wantStatus: http.StatusNotFound,
			wantCode:   "invalid_incident",
		},
		{
			name:       "unit not available",
			err:        fmt.Errorf("service: could not assign units: %w", models.ErrUnitNotAvailable),
			wantStatus: http.StatusConflict,
			wantCode:   "unit_not_available",
		},
		{
			name:       "no units",
			err:        fmt.Errorf("service: could not assign units: %w", service.ErrNoUnits),
			wantStatus: http.StatusBadRequest,
			wantCode:   "validation_failed",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, _, router := newTestHandler(t)

			mockService.EXPECT().
				AssignUnits(gomock.Any(), "INC-1", []string{"PD-15"}).
				Return(nil, tt.err).
				Times(1)

			w := makeRequest(router, "POST", "/api/v1/incidents/INC-1/assignments",
				bytes.NewBufferString(`{"unit_ids":["PD-15"]}`), apiKeyHeader)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestAssignUnits_ValidationError(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().AssignUnits(gomock.Any(), gomock.Any(), gomock.Any()).Times(0) // Сервис не должен вызываться

	for _, body := range []string{`{"unit_ids":[]}`, `{}`, `{"unit_ids":[""]}`} {
		w := makeRequest(router, "POST", "/api/v1/incidents/INC-1/assignments", bytes.NewBufferString(body), apiKeyHeader)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "validation_failed", decodeError(t, w).Code, body)
	}
}

func TestAssignUnits_InvalidJSON(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().AssignUnits(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/incidents/INC-1/assignments", bytes.NewBufferString(`{"unit_ids": [`), apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestAssignUnits_Unauthorized(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().AssignUnits(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	body := `{"unit_ids":["PD-15"]}`
	w := makeRequest(router, "POST", "/api/v1/incidents/INC-1/assignments", bytes.NewBufferString(body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "API key required")
	assert.Equal(t, "unauthorized", decodeError(t, w).Code)

	w = makeRequest(router, "POST", "/api/v1/incidents/INC-1/assignments", bytes.NewBufferString(body),
		map[string]string{"Authorization": "Bearer wrong-key"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid API key")
	assert.Equal(t, "unauthorized", decodeError(t, w).Code)
}

func TestAssignUnits_BearerToken(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().
		AssignUnits(gomock.Any(), "INC-1", []string{"PD-15"}).
		Return(&models.Incident{ID: "INC-1"}, nil).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/INC-1/assignments", bytes.NewBufferString(`{"unit_ids":["PD-15"]}`),
		map[string]string{"Authorization": "Bearer test-api-key"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetDispatchLog_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	logID := uuid.New()

	mockService.EXPECT().DispatchLog(gomock.Any(), "INC-1").Return([]*models.DispatchLog{
		{ID: logID, IncidentID: "INC-1", UnitID: "PD-15", Action: models.ActionDispatched},
	}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/INC-1/dispatch-log", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []DispatchLogResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, logID, resp[0].ID)
	assert.Equal(t, "DISPATCHED", resp[0].Action)
}

func TestGetTimeline_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	noteID := uuid.New()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mockService.EXPECT().Timeline(gomock.Any(), "INC-1").Return([]*models.IncidentUpdate{
		{ID: noteID, IncidentID: "INC-1", Timestamp: at, Text: "Perimeter secured.", Source: models.SourceCommand, Type: models.UpdateInfo},
	}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/INC-1/updates", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []IncidentUpdateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, IncidentUpdateResponse{
		ID: noteID, IncidentID: "INC-1", Timestamp: at, Text: "Perimeter secured.", Source: "Command", Type: "INFO",
	}, resp[0])
}

func TestGetTimeline_NotFound(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().Timeline(gomock.Any(), "INC-404").
		Return(nil, fmt.Errorf("service: timeline: %w", models.ErrIncidentNotFound)).Times(1)

	w := makeRequest(router, "GET", "/api/v1/incidents/INC-404/updates", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decodeError(t, w).Code)
}

func TestAddNote_Created(t *testing.T) {
	mockService, _, router := newTestHandler(t)
	noteID := uuid.New()

	mockService.EXPECT().
		AddNote(gomock.Any(), "INC-1", "Road closed at 5th Ave.", "Traffic").
		Return(&models.IncidentUpdate{
			ID: noteID, IncidentID: "INC-1", Text: "Road closed at 5th Ave.", Source: "Traffic", Type: models.UpdateInfo,
		}, nil).Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/INC-1/updates",
		bytes.NewBufferString(`{"text":"Road closed at 5th Ave.","source":"Traffic"}`), apiKeyHeader)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp IncidentUpdateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, noteID, resp.ID)
	assert.Equal(t, "INFO", resp.Type)
}

func TestAddNote_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		headers  []map[string]string
		wantCode int
		wantKind string
	}{
		{name: "missing text", body: `{"source":"Traffic"}`, headers: []map[string]string{apiKeyHeader}, wantCode: http.StatusBadRequest, wantKind: "validation_failed"},
		{name: "broken json", body: `{"text":`, headers: []map[string]string{apiKeyHeader}, wantCode: http.StatusBadRequest, wantKind: "validation_failed"},
		{name: "no api key", body: `{"text":"note"}`, wantCode: http.StatusUnauthorized, wantKind: "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, _, router := newTestHandler(t)
			mockService.EXPECT().AddNote(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

			w := makeRequest(router, "POST", "/api/v1/incidents/INC-1/updates", bytes.NewBufferString(tt.body), tt.headers...)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantKind, decodeError(t, w).Code)
		})
	}
}

func TestAddNote_BlankText(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().AddNote(gomock.Any(), "INC-1", "   ", "").
		Return(nil, fmt.Errorf("service: add note: %w", service.ErrEmptyNote)).Times(1)

	w := makeRequest(router, "POST", "/api/v1/incidents/INC-1/updates", bytes.NewBufferString(`{"text":"   "}`), apiKeyHeader)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", decodeError(t, w).Code)
}

func TestListUnits_StatusFilter(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().ListUnits(gomock.Any(), models.UnitAvailable).Return([]*models.EmergencyUnit{
		{ID: "PD-15", Type: models.UnitPolice, Status: models.UnitAvailable},
	}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/units?status=available", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []UnitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "PD-15", resp[0].ID)
	assert.Empty(t, resp[0].CurrentAssignment)
}

func TestListUnits_InvalidStatus(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().ListUnits(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "GET", "/api/v1/units?status=SLEEPING", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetUnit_NotFound(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().GetUnit(gomock.Any(), "PD-404").
		Return(nil, fmt.Errorf("service: could not get unit: %w", models.ErrUnitNotFound)).
		Times(1)

	w := makeRequest(router, "GET", "/api/v1/units/PD-404", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "unit not found")
}

func TestGetStats_Success(t *testing.T) {
	mockService, _, router := newTestHandler(t)

	mockService.EXPECT().Stats(gomock.Any()).Return(&models.BoardStats{
		ActiveIncidents:   3,
		CriticalIncidents: 1,
		AvailableUnits:    5,
		DeployedUnits:     3,
		OnDutyUnits:       8,
		AlertLevel:        models.AlertRed,
	}, nil).Times(1)

	w := makeRequest(router, "GET", "/api/v1/board/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, StatsResponse{
		ActiveIncidents: 3, CriticalIncidents: 1, AvailableUnits: 5, DeployedUnits: 3, OnDutyUnits: 8, AlertLevel: "RED",
	}, resp)
}

func TestLogin_Success(t *testing.T) {
	_, mockVerifier, router := newTestHandler(t)

	mockVerifier.EXPECT().
		Verify(gomock.Any(), models.Credentials{Role: models.RolePublicSafety, Login: "1010", Password: "2020"}).
		Return(models.RolePublicSafety, nil).
		Times(1)

	body := `{"role":"PUBLIC SAFETY OFFICIAL","login":"1010","password":"2020"}`
	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBufferString(body))

	assert.Equal(t, http.StatusOK, w.Code)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "PUBLIC_SAFETY", resp.Role)
	assert.Equal(t, "public-safety-dashboard", resp.Dashboard)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	_, mockVerifier, router := newTestHandler(t)

	mockVerifier.EXPECT().
		Verify(gomock.Any(), gomock.Any()).
		Return(models.Role(""), fmt.Errorf("service: %w", models.ErrInvalidCredentials)).
		Times(1)

	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBufferString(`{"role":"CITY_ADMIN","login":"9090","password":"0000"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, w).Code)
}

func TestLogin_UnknownRole(t *testing.T) {
	_, mockVerifier, router := newTestHandler(t)

	mockVerifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBufferString(`{"role":"MAYOR","login":"1","password":"2"}`))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "invalid_credentials", decodeError(t, w).Code)
}

func TestLogin_MissingField(t *testing.T) {
	_, mockVerifier, router := newTestHandler(t)

	mockVerifier.EXPECT().Verify(gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, "POST", "/api/v1/auth/login", bytes.NewBufferString(`{"role":"CITIZEN","login":"a@b.c"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Error:Field validation for 'Password' failed on the 'required' tag")
}

func TestHealthCheck(t *testing.T) {
	_, _, router := newTestHandler(t)

	w := makeRequest(router, "GET", "/api/v1/system/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
