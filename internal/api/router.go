package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers/cancel_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers/complete_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers/confirm_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers/get_free_slots"
	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers/list_appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers/request_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers/start_appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/pkg/metrics"
)

const msgUnavailable = "сервис недоступен"

// AppointmentService операции движка записей, доступные по HTTP
type AppointmentService interface {
	request_appointment.AppointmentService
	confirm_appointment.AppointmentService
	start_appointment.AppointmentService
	complete_appointment.AppointmentService
	cancel_appointment.AppointmentService
	get_appointment.AppointmentService
	list_appointments.AppointmentService
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RouterConfig настройки маршрутизатора
type RouterConfig struct {
	Auth        middleware.AuthConfig
	RateLimiter *middleware.RateLimiter // nil - без ограничения частоты
	Metrics     *metrics.Metrics        // nil - без метрик
	MetricsPath string
	Health      func(ctx context.Context) error // nil - всегда здоров
	FreeSlots   get_free_slots.FreeSlotsUseCase // nil - маршрут свободных слотов не подключается
}

// NewRouter собирает HTTP маршруты сервиса
func NewRouter(service AppointmentService, cfg RouterConfig, logger Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))

	if cfg.Metrics != nil {
		r.Use(middleware.MetricsMiddleware(cfg.Metrics))
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/healthz", healthHandler(cfg.Health, logger)).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(cfg.Auth, logger))
	if cfg.RateLimiter != nil {
		api.Use(cfg.RateLimiter.Middleware(logger))
	}

	api.HandleFunc("/appointments",
		request_appointment.NewHandler(service, logger).Handle).Methods(http.MethodPost)
	api.HandleFunc("/appointments",
		list_appointments.NewHandler(service, logger).Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}",
		get_appointment.NewHandler(service, logger).Handle).Methods(http.MethodGet)
	api.HandleFunc("/appointments/{appointmentId}/confirm",
		confirm_appointment.NewHandler(service, logger).Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/start",
		start_appointment.NewHandler(service, logger).Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/complete",
		complete_appointment.NewHandler(service, logger).Handle).Methods(http.MethodPatch)
	api.HandleFunc("/appointments/{appointmentId}/cancel",
		cancel_appointment.NewHandler(service, logger).Handle).Methods(http.MethodPatch)

	if cfg.FreeSlots != nil {
		api.HandleFunc("/providers/{providerId}/free-slots",
			get_free_slots.NewHandler(cfg.FreeSlots, logger).Handle).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(check func(ctx context.Context) error, logger Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				logger.Error("GET /healthz - Health check failed: %v", err)
				handlers.RespondError(w, http.StatusServiceUnavailable, msgUnavailable)
				return
			}
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
