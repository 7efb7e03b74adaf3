package domain

import (
	"fmt"
	"time"
)

// BookingPolicy represents the scheduling rules applied by the lifecycle engine.
// All open policy choices are encoded here rather than spread over code paths.
type BookingPolicy struct {
	MaxActiveAppointments int           // Лимит активных записей на клиента
	StaleRequestAge       time.Duration // Возраст необработанного запроса для напоминания
	Weather               WeatherPolicy // Пороги пригодности погоды для занятий на улице
}

// DefaultBookingPolicy returns the policy used when nothing is configured
func DefaultBookingPolicy() BookingPolicy {
	return BookingPolicy{
		MaxActiveAppointments: DefaultMaxActiveAppointments,
		StaleRequestAge:       DefaultStaleRequestAge,
		Weather:               DefaultWeatherPolicy(),
	}
}

// Validate checks that policy values are within sane bounds
func (p BookingPolicy) Validate() error {
	if p.MaxActiveAppointments < MinMaxActiveAppointments || p.MaxActiveAppointments > MaxMaxActiveAppointments {
		return fmt.Errorf("%w: max active appointments must be between %d and %d, got %d",
			ErrValidation, MinMaxActiveAppointments, MaxMaxActiveAppointments, p.MaxActiveAppointments)
	}
	if p.StaleRequestAge <= 0 {
		return fmt.Errorf("%w: stale request age must be positive", ErrValidation)
	}
	if p.Weather.MinTemperature >= p.Weather.MaxTemperature {
		return fmt.Errorf("%w: weather min temperature must be below max temperature", ErrValidation)
	}
	return nil
}

// HasCapacity returns true if a client with activeCount active appointments may book one more
func (p BookingPolicy) HasCapacity(activeCount int) bool {
	return activeCount < p.MaxActiveAppointments
}
