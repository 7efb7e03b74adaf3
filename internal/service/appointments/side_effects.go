package appointments

import (
	"context"
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// StatusUpdateMessage текст уведомления о смене статуса записи
func StatusUpdateMessage(a *domain.Appointment) string {
	return fmt.Sprintf("Appointment %d status updated to: %s", a.ID, strings.ToUpper(string(a.Status)))
}

// notify уведомляет участника по ID. Ошибки только логируются.
func (s *Service) notify(ctx context.Context, personID int64, appt *domain.Appointment) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := s.sideEffectContext(ctx)
	defer cancel()

	person, err := s.persons.FindByID(ctx, personID)
	if err != nil {
		s.logger.Warn("notify: failed to resolve contact of person id=%d for appointment id=%d: %v", personID, appt.ID, err)
		return
	}

	s.send(ctx, person, appt)
}

// notifyPerson уведомляет уже полученного участника. Ошибки только логируются.
func (s *Service) notifyPerson(ctx context.Context, person *domain.Person, appt *domain.Appointment) {
	if s.notifier == nil || person == nil {
		return
	}

	ctx, cancel := s.sideEffectContext(ctx)
	defer cancel()

	s.send(ctx, person, appt)
}

func (s *Service) send(ctx context.Context, person *domain.Person, appt *domain.Appointment) {
	if person.Phone == "" {
		s.logger.Info("notify: person id=%d has no contact, skipping appointment id=%d", person.ID, appt.ID)
		return
	}

	if !s.notifier.Send(ctx, person.Phone, StatusUpdateMessage(appt)) {
		s.logger.Warn("notify: failed to deliver notification to person id=%d for appointment id=%d", person.ID, appt.ID)
		return
	}

	s.logger.Info("notify: person id=%d notified about appointment id=%d (%s)", person.ID, appt.ID, appt.Status)
}

// attachWeatherAdvisory добавляет к записи погодное предупреждение для занятий на улице
// Предупреждение никогда не блокирует запись: ошибка прогноза заменяется прогнозом по умолчанию
func (s *Service) attachWeatherAdvisory(ctx context.Context, appt *domain.Appointment) {
	if !appt.ActivityType.IsOutdoor() || appt.Location == nil {
		return
	}

	forecast, unavailable := domain.DefaultForecast(), true
	if s.weather != nil {
		ctx, cancel := s.sideEffectContext(ctx)
		defer cancel()

		f, err := s.weather.Forecast(ctx, appt.Location.Latitude, appt.Location.Longitude, appt.ScheduledAt)
		if err != nil {
			s.logger.Warn("weather: forecast for appointment id=%d failed, using default: %v", appt.ID, err)
		} else {
			forecast, unavailable = f, false
		}
	}

	adv := domain.NewWeatherAdvisory(appt.ScheduledAt, forecast, s.policy.Weather, unavailable)
	if !adv.Suitable || adv.Unavailable {
		s.logger.Warn("weather: appointment id=%d at (%f, %f) on %s: %s",
			appt.ID, appt.Location.Latitude, appt.Location.Longitude,
			appt.ScheduledAt.Format(domain.DateFormat), adv.Message)
	}

	appt.WeatherAdvisory = adv
}
