package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"time"

	"github.com/google/uuid"
	"github.com/suchimauz/hms-availability-resolver/internal/config"
	"github.com/suchimauz/hms-availability-resolver/internal/core/domain"
	"github.com/suchimauz/hms-availability-resolver/internal/core/ports/out"
)

type BackendAdapter struct {
	client   *http.Client
	baseURL  string
	username string
	password string
	logger   out.LoggerPort
}

func NewBackendAdapter(cfg *config.Config, logger out.LoggerPort) *BackendAdapter {
	return &BackendAdapter{
		client:   &http.Client{Timeout: 10 * time.Second},
		baseURL:  cfg.Backend.URL,
		username: cfg.Backend.Username,
		password: cfg.Backend.Password,
		logger:   logger,
	}
}

// doRequest выполняет запрос к бэкенду и разворачивает конверт ответа.
// Ответ со success=false считается ошибкой наравне с сетевой.
func (a *BackendAdapter) doRequest(ctx context.Context, method, url string, query nurl.Values, body interface{}) (*out.BackendEnvelope, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}

	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.SetBasicAuth(a.username, a.password)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var envelope out.BackendEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, err
	}

	if !envelope.Success {
		return nil, fmt.Errorf("backend returned non-success payload: %s", envelope.Message)
	}

	return &envelope, nil
}

func (a *BackendAdapter) ListAvailabilities(ctx context.Context, filters out.AvailabilityFilters) ([]domain.AvailabilityRecord, error) {
	a.logger.Info("backend.availability.list.fetch", out.LogFields{
		"doctorId": filters.DoctorID,
	})

	query := nurl.Values{}
	if filters.DoctorID != "" {
		query.Add("doctor_id", filters.DoctorID)
	}
	if filters.Search != "" {
		query.Add("search", filters.Search)
	}

	url := fmt.Sprintf("%s/availabilities", a.baseURL)
	envelope, err := a.doRequest(ctx, http.MethodGet, url, query, nil)
	if err != nil {
		a.logger.Error("backend.availability.list.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	var records []domain.AvailabilityRecord
	if err := json.Unmarshal(envelope.Data, &records); err != nil {
		a.logger.Error("backend.availability.list.decode_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	a.logger.Debug("backend.availability.list.fetch_success", out.LogFields{
		"count": len(records),
	})

	return records, nil
}

func (a *BackendAdapter) GetTimeSlots(ctx context.Context, date time.Time, doctorID string) (*domain.SlotEntry, error) {
	day := date.Format("2006-01-02")

	a.logger.Info("backend.time_slots.fetch", out.LogFields{
		"date":     day,
		"doctorId": doctorID,
	})

	query := nurl.Values{}
	query.Add("date", day)

	url := fmt.Sprintf("%s/doctors/%s/time-slots", a.baseURL, doctorID)
	envelope, err := a.doRequest(ctx, http.MethodGet, url, query, nil)
	if err != nil {
		a.logger.Error("backend.time_slots.fetch_failed", out.LogFields{
			"date":     day,
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, err
	}

	var entry domain.SlotEntry
	if err := json.Unmarshal(envelope.Data, &entry); err != nil {
		a.logger.Error("backend.time_slots.decode_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	// Бэкенд местами не заполняет дату и врача в ответе
	if entry.Date == "" {
		entry.Date = day
	}
	if entry.DoctorID == "" {
		entry.DoctorID = doctorID
	}

	a.logger.Debug("backend.time_slots.fetch_success", out.LogFields{
		"date":       day,
		"doctorId":   doctorID,
		"slotsCount": len(entry.Slots),
		"source":     entry.Source,
	})

	return &entry, nil
}

func (a *BackendAdapter) CreateAvailability(ctx context.Context, doctorID string, payload out.AvailabilityPayload) (*domain.AvailabilityRecord, error) {
	a.logger.Info("backend.availability.create", out.LogFields{
		"doctorId": doctorID,
		"period":   payload.Period,
	})

	url := fmt.Sprintf("%s/doctors/%s/availabilities", a.baseURL, doctorID)
	envelope, err := a.doRequest(ctx, http.MethodPost, url, nil, payload)
	if err != nil {
		a.logger.Error("backend.availability.create_failed", out.LogFields{
			"doctorId": doctorID,
			"error":    err.Error(),
		})
		return nil, err
	}

	var record domain.AvailabilityRecord
	if err := json.Unmarshal(envelope.Data, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func (a *BackendAdapter) UpdateAvailability(ctx context.Context, recordID uuid.UUID, payload out.AvailabilityPayload) (*domain.AvailabilityRecord, error) {
	a.logger.Info("backend.availability.update", out.LogFields{
		"recordId": recordID,
	})

	url := fmt.Sprintf("%s/availabilities/%s", a.baseURL, recordID)
	envelope, err := a.doRequest(ctx, http.MethodPut, url, nil, payload)
	if err != nil {
		a.logger.Error("backend.availability.update_failed", out.LogFields{
			"recordId": recordID,
			"error":    err.Error(),
		})
		return nil, err
	}

	var record domain.AvailabilityRecord
	if err := json.Unmarshal(envelope.Data, &record); err != nil {
		return nil, err
	}

	return &record, nil
}

func (a *BackendAdapter) DeleteAvailability(ctx context.Context, recordID uuid.UUID) error {
	a.logger.Info("backend.availability.delete", out.LogFields{
		"recordId": recordID,
	})

	url := fmt.Sprintf("%s/availabilities/%s", a.baseURL, recordID)
	if _, err := a.doRequest(ctx, http.MethodDelete, url, nil, nil); err != nil {
		a.logger.Error("backend.availability.delete_failed", out.LogFields{
			"recordId": recordID,
			"error":    err.Error(),
		})
		return err
	}

	return nil
}
