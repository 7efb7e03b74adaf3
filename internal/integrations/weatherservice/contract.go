package weatherservice

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// ForecastCache кэш прогнозов по ключу (координаты, дата)
type ForecastCache interface {
	Get(ctx context.Context, key string) (domain.Forecast, bool, error)
	Set(ctx context.Context, key string, forecast domain.Forecast, ttl time.Duration) error
}
