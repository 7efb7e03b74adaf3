package domain

import "time"

// SessionDuration длительность одного занятия
const SessionDuration = time.Hour

// Default policy values
const (
	DefaultMaxActiveAppointments = 5
	DefaultStaleRequestAge       = 24 * time.Hour
)

// Business validation constants
const (
	MinMaxActiveAppointments    = 1
	MaxMaxActiveAppointments    = 100
	MaxNotesLength              = 1000
	MaxCancellationReasonLength = 500
)

// Outdoor weather thresholds
const (
	DefaultOutdoorMinTemperature    = 5.0  // °C, минимальная температура должна быть выше
	DefaultOutdoorMaxTemperature    = 35.0 // °C, максимальная температура должна быть ниже
	DefaultOutdoorMaxPrecipitation  = 5.0  // мм, сумма осадков должна быть ниже
	WeatherUnavailableDescription   = "Weather data unavailable"
	defaultForecastMaxTemperature   = 20.0
	defaultForecastMinTemperature   = 15.0
	defaultForecastPrecipitationSum = 0.0
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveStatuses список статусов активных записей
// Используется и для лимита активных записей клиента, и для проверки пересечений
var ActiveStatuses = []AppointmentStatus{
	StatusRequested,
	StatusConfirmed,
	StatusInProgress,
}

// TerminalStatuses список конечных статусов
var TerminalStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelled,
}
