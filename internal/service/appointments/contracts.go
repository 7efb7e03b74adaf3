package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	UpdateTransition(ctx context.Context, appt *domain.Appointment, from domain.AppointmentStatus) error
	LockActors(ctx context.Context, clientID, providerID int64) error
}

// PersonDirectory интерфейс справочника участников
type PersonDirectory interface {
	FindByID(ctx context.Context, id int64) (*domain.Person, error)
}

// NotificationDispatcher интерфейс отправки уведомлений. false - не доставлено
type NotificationDispatcher interface {
	Send(ctx context.Context, contact string, message string) bool
}

// WeatherProvider интерфейс получения прогноза погоды
type WeatherProvider interface {
	Forecast(ctx context.Context, latitude, longitude float64, date time.Time) (domain.Forecast, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// MetricsCollector интерфейс учета переходов статусов
type MetricsCollector interface {
	ObserveTransition(operation string, result string)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
