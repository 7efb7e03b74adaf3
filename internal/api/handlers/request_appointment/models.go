package request_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// RequestAppointmentRequest HTTP request model
type RequestAppointmentRequest struct {
	ClientID     int64    `json:"clientId,omitempty"` // По умолчанию - инициатор запроса
	ProviderID   int64    `json:"providerId"`
	ActivityType string   `json:"activityType"`
	Notes        string   `json:"notes"`
	ScheduledAt  string   `json:"scheduledAt"` // RFC3339, "2030-06-01T10:00:00Z"
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *RequestAppointmentRequest) ToServiceRequest(caller domain.Caller) (*models.RequestAppointmentRequest, error) {
	scheduledAt, err := time.Parse(time.RFC3339, r.ScheduledAt)
	if err != nil {
		return nil, err
	}

	clientID := r.ClientID
	if clientID == 0 && caller.Role == domain.RoleClient {
		clientID = caller.ID
	}

	return &models.RequestAppointmentRequest{
		ClientID:     clientID,
		ProviderID:   r.ProviderID,
		ActivityType: r.ActivityType,
		Notes:        r.Notes,
		ScheduledAt:  scheduledAt,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
	}, nil
}
