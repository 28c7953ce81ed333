package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/suchimauz/hms-availability-resolver/internal/config"
	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
)

type stubUseCase struct {
	updatedDoctorID string
	deletedDoctorID string
	deleteCalled    bool
	updateCalled    bool
}

func (s *stubUseCase) MatchForDate(date time.Time, records []domain.AvailabilityRecord) ([]domain.AvailabilityRecord, error) {
	return nil, nil
}

func (s *stubUseCase) BuildCalendar(ctx context.Context, anchor time.Time, days int, filters out.AvailabilityFilters) ([]domain.CalendarDay, error) {
	return nil, nil
}

func (s *stubUseCase) GetSlots(ctx context.Context, date time.Time, doctorID string) (*domain.SlotEntry, error) {
	return &domain.SlotEntry{}, nil
}

func (s *stubUseCase) PreloadForDate(ctx context.Context, date time.Time, doctorIDs []string) error {
	return nil
}

func (s *stubUseCase) FindConflict(candidate out.AvailabilityPayload, existing []domain.AvailabilityRecord) *domain.AvailabilityRecord {
	return nil
}

func (s *stubUseCase) ListAvailabilities(ctx context.Context, filters out.AvailabilityFilters) ([]domain.AvailabilityRecord, error) {
	return nil, nil
}

func (s *stubUseCase) CreateAvailability(ctx context.Context, doctorID string, payload out.AvailabilityPayload) (*domain.AvailabilityRecord, error) {
	return &domain.AvailabilityRecord{}, nil
}

func (s *stubUseCase) UpdateAvailability(ctx context.Context, recordID uuid.UUID, doctorID string, payload out.AvailabilityPayload) (*domain.AvailabilityRecord, error) {
	s.updateCalled = true
	s.updatedDoctorID = doctorID
	return &domain.AvailabilityRecord{}, nil
}

func (s *stubUseCase) DeleteAvailability(ctx context.Context, recordID uuid.UUID, doctorID string) error {
	s.deleteCalled = true
	s.deletedDoctorID = doctorID
	return nil
}

func (s *stubUseCase) InvalidateDoctorCache(ctx context.Context, doctorID string) error {
	return nil
}

func (s *stubUseCase) InvalidateAllSlotsCache(ctx context.Context) error {
	return nil
}

func newTestRouter() (*gin.Engine, *stubUseCase) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.Auth.BasicClients = []config.ConfigBasicClient{
		{Username: "test", Password: "test"},
	}
	cfg.Calendar.WindowDays = 30

	useCase := &stubUseCase{}
	router := gin.New()
	NewAvailabilityController(useCase, cfg).RegisterRoutes(router)

	return router, useCase
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.SetBasicAuth("test", "test")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

// Без doctorId удаление не выполняется: нечем инвалидировать кэш слотов врача
func TestDeleteAvailability_RequiresDoctorID(t *testing.T) {
	router, useCase := newTestRouter()

	recorder := doRequest(router, http.MethodDelete, "/api/v1/availability/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, useCase.deleteCalled)

	recorder = doRequest(router, http.MethodDelete, "/api/v1/availability/"+uuid.NewString()+"?doctorId=42", "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "42", useCase.deletedDoctorID)
}

func TestUpdateAvailability_RequiresDoctorID(t *testing.T) {
	router, useCase := newTestRouter()

	recorder := doRequest(router, http.MethodPut, "/api/v1/availability/"+uuid.NewString(), `{"period":"everyday"}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.False(t, useCase.updateCalled)

	recorder = doRequest(router, http.MethodPut, "/api/v1/availability/"+uuid.NewString(), `{"doctorId":"42","period":"everyday"}`)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "42", useCase.updatedDoctorID)
}

func TestBasicAuth_RejectsUnknownClient(t *testing.T) {
	router, _ := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/availability", nil)
	req.SetBasicAuth("intruder", "intruder")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
