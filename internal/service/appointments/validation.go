package appointments

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// buildDraft валидирует запрос на запись и собирает новую запись в статусе requested
func buildDraft(req *models.RequestAppointmentRequest, now time.Time) (*domain.Appointment, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", domain.ErrValidation)
	}

	if req.ClientID <= 0 {
		return nil, fmt.Errorf("%w: clientId must be positive", domain.ErrValidation)
	}
	if req.ProviderID <= 0 {
		return nil, fmt.Errorf("%w: providerId must be positive", domain.ErrValidation)
	}
	if req.ClientID == req.ProviderID {
		return nil, fmt.Errorf("%w: client and provider must be different persons", domain.ErrValidation)
	}

	activity, err := models.ToDomainActivityType(req.ActivityType)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown activityType %q", domain.ErrValidation, req.ActivityType)
	}

	notes, err := validateNotes("notes", req.Notes)
	if err != nil {
		return nil, err
	}

	if err := validateScheduledAt(req.ScheduledAt, now); err != nil {
		return nil, err
	}

	location, err := validateLocation(req.Latitude, req.Longitude, activity)
	if err != nil {
		return nil, err
	}

	return &domain.Appointment{
		ClientID:     req.ClientID,
		ProviderID:   req.ProviderID,
		Status:       domain.StatusRequested,
		ActivityType: activity,
		ScheduledAt:  req.ScheduledAt.UTC(),
		ClientNotes:  notes,
		Location:     location,
		RequestedAt:  now,
		UpdatedAt:    now,
	}, nil
}

// validateScheduledAt проверяет, что занятие назначено строго в будущем
func validateScheduledAt(scheduledAt, now time.Time) error {
	if scheduledAt.IsZero() {
		return fmt.Errorf("%w: scheduledAt is required", domain.ErrValidation)
	}
	if !scheduledAt.After(now) {
		return fmt.Errorf("%w: scheduledAt must be in the future", domain.ErrValidation)
	}
	return nil
}

// validateLocation проверяет координаты: обе или ни одной, обязательны для занятий на улице
func validateLocation(lat, lon *float64, activity domain.ActivityType) (*domain.Location, error) {
	if (lat == nil) != (lon == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be provided together", domain.ErrValidation)
	}

	if lat == nil {
		if activity.IsOutdoor() {
			return nil, fmt.Errorf("%w: location is required for %s", domain.ErrValidation, activity)
		}
		return nil, nil
	}

	loc := domain.Location{Latitude: *lat, Longitude: *lon}
	if !loc.IsValid() {
		return nil, fmt.Errorf("%w: location (%f, %f) is out of range", domain.ErrValidation, *lat, *lon)
	}
	return &loc, nil
}

// validateNotes обрезает пробелы и проверяет, что заметка не пустая и не длиннее лимита
func validateNotes(field, notes string) (string, error) {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s must not be blank", domain.ErrValidation, field)
	}
	if utf8.RuneCountInString(trimmed) > domain.MaxNotesLength {
		return "", fmt.Errorf("%w: %s must be at most %d characters", domain.ErrValidation, field, domain.MaxNotesLength)
	}
	return trimmed, nil
}

// validateCancellationReason причина необязательна; пустая строка считается отсутствующей
func validateCancellationReason(reason *string) (*string, error) {
	if reason == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*reason)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: reason must be at most %d characters",
			domain.ErrValidation, domain.MaxCancellationReasonLength)
	}
	return &trimmed, nil
}

func validateID(id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: appointment id must be positive", domain.ErrValidation)
	}
	return nil
}
