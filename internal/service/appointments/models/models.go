package models

import (
	"errors"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrInvalidActivityType возвращается при некорректном типе занятия
	ErrInvalidActivityType = errors.New("invalid activity type")
)

// Request модели

// RequestAppointmentRequest запрос клиента на запись к специалисту
type RequestAppointmentRequest struct {
	ClientID     int64     `json:"clientId"`
	ProviderID   int64     `json:"providerId"`
	ActivityType string    `json:"activityType"`
	Notes        string    `json:"notes"`
	ScheduledAt  time.Time `json:"scheduledAt"`
	Latitude     *float64  `json:"latitude,omitempty"`  // Обязательно для outdoor_training
	Longitude    *float64  `json:"longitude,omitempty"` // Обязательно для outdoor_training
}

// CompleteAppointmentRequest запрос специалиста на завершение занятия
type CompleteAppointmentRequest struct {
	ProviderNotes string `json:"providerNotes"`
}

// CancelAppointmentRequest запрос на отмену записи
type CancelAppointmentRequest struct {
	Reason *string `json:"reason,omitempty"` // Причина отмены (опционально)
}

// ListAppointmentsRequest запрос списка записей инициатора
type ListAppointmentsRequest struct {
	Status *string `json:"status,omitempty"` // Фильтр по статусу (опционально)
}

// Response модели

// LocationResponse координаты места занятия
type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WeatherAdvisoryResponse погодное предупреждение для занятия на улице
type WeatherAdvisoryResponse struct {
	Date             string  `json:"date"` // "2025-10-15"
	Suitable         bool    `json:"suitable"`
	Unavailable      bool    `json:"unavailable"`
	TemperatureMax   float64 `json:"temperatureMax"`
	TemperatureMin   float64 `json:"temperatureMin"`
	PrecipitationSum float64 `json:"precipitationSum"`
	Description      string  `json:"description"`
	Message          string  `json:"message"`
}

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"clientId"`
	ProviderID   int64     `json:"providerId"`
	Status       string    `json:"status"`
	ActivityType string    `json:"activityType"`
	ScheduledAt  time.Time `json:"scheduledAt"`
	EndsAt       time.Time `json:"endsAt"`

	ClientNotes   string            `json:"clientNotes"`
	ProviderNotes *string           `json:"providerNotes,omitempty"`
	Location      *LocationResponse `json:"location,omitempty"`

	RequestedAt time.Time  `json:"requestedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	UpdatedAt time.Time `json:"updatedAt"`

	WeatherAdvisory *WeatherAdvisoryResponse `json:"weatherAdvisory,omitempty"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                 a.ID,
		ClientID:           a.ClientID,
		ProviderID:         a.ProviderID,
		Status:             string(a.Status),
		ActivityType:       string(a.ActivityType),
		ScheduledAt:        a.ScheduledAt,
		EndsAt:             a.Slot().End,
		ClientNotes:        a.ClientNotes,
		ProviderNotes:      a.ProviderNotes,
		RequestedAt:        a.RequestedAt,
		ConfirmedAt:        a.ConfirmedAt,
		StartedAt:          a.StartedAt,
		CompletedAt:        a.CompletedAt,
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		UpdatedAt:          a.UpdatedAt,
	}

	if a.Location != nil {
		resp.Location = &LocationResponse{
			Latitude:  a.Location.Latitude,
			Longitude: a.Location.Longitude,
		}
	}

	if adv := a.WeatherAdvisory; adv != nil {
		resp.WeatherAdvisory = &WeatherAdvisoryResponse{
			Date:             adv.Date.Format(domain.DateFormat),
			Suitable:         adv.Suitable,
			Unavailable:      adv.Unavailable,
			TemperatureMax:   adv.Forecast.TemperatureMax,
			TemperatureMin:   adv.Forecast.TemperatureMin,
			PrecipitationSum: adv.Forecast.PrecipitationSum,
			Description:      adv.Forecast.Description,
			Message:          adv.Message,
		}
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, a := range appointments {
		if dto := FromDomainAppointment(a); dto != nil {
			resp.Appointments = append(resp.Appointments, *dto)
		}
	}

	return resp
}

// ToDomainStatus конвертирует строку в domain.AppointmentStatus
// Регистр не важен: "CONFIRMED" и "confirmed" эквивалентны
func ToDomainStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(strings.ToLower(strings.TrimSpace(status)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// ToDomainActivityType конвертирует строку в domain.ActivityType
func ToDomainActivityType(activity string) (domain.ActivityType, error) {
	a := domain.ActivityType(strings.ToLower(strings.TrimSpace(activity)))
	if !a.IsValid() {
		return "", ErrInvalidActivityType
	}
	return a, nil
}
