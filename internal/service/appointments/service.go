package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/access"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflicts"
)

const (
	tracerName = "github.com/m04kA/SMC-AppointmentService/internal/service/appointments"

	defaultSideEffectTimeout = 5 * time.Second
)

// Service движок жизненного цикла записей
// Все изменения состояния записи выполняются здесь, внутри одной сериализуемой транзакции на вызов.
// Уведомления и погодные предупреждения выполняются после фиксации транзакции и не влияют на результат.
type Service struct {
	repo      AppointmentRepository
	persons   PersonDirectory
	notifier  NotificationDispatcher
	weather   WeatherProvider
	txManager TransactionManager
	guard     *access.Guard
	checker   *conflicts.Checker
	policy    domain.BookingPolicy

	timeProvider      TimeProvider
	metrics           MetricsCollector
	tracer            trace.Tracer
	sideEffectTimeout time.Duration
	logger            Logger
}

// Option настройка сервиса
type Option func(*Service)

// WithTimeProvider подменяет источник времени
func WithTimeProvider(tp TimeProvider) Option {
	return func(s *Service) {
		if tp != nil {
			s.timeProvider = tp
		}
	}
}

// WithMetrics включает учет переходов статусов
func WithMetrics(m MetricsCollector) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSideEffectTimeout ограничивает время отправки уведомления и запроса прогноза
func WithSideEffectTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.sideEffectTimeout = d
		}
	}
}

// NewService создает новый экземпляр сервиса записей
// weather может быть nil: тогда для занятий на улице используется прогноз по умолчанию
func NewService(
	repo AppointmentRepository,
	persons PersonDirectory,
	notifier NotificationDispatcher,
	weather WeatherProvider,
	txManager TransactionManager,
	policy domain.BookingPolicy,
	logger Logger,
	opts ...Option,
) *Service {
	s := &Service{
		repo:              repo,
		persons:           persons,
		notifier:          notifier,
		weather:           weather,
		txManager:         txManager,
		guard:             access.NewGuard(),
		checker:           conflicts.NewChecker(repo),
		policy:            policy,
		timeProvider:      &RealTimeProvider{},
		metrics:           noopMetrics{},
		tracer:            otel.Tracer(tracerName),
		sideEffectTimeout: defaultSideEffectTimeout,
		logger:            logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy возвращает действующие правила записи
func (s *Service) Policy() domain.BookingPolicy {
	return s.policy
}

// finish фиксирует результат операции в метриках и span
func (s *Service) finish(span trace.Span, operation string, err error) {
	result := resultOf(err)
	s.metrics.ObserveTransition(operation, result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	span.End()
}

// txError приводит ошибку транзакции к таксономии: доменные ошибки пробрасываются как есть,
// всё остальное оборачивается в ErrInternal
func txError(operation string, err error) error {
	if err == nil || isDomainError(err) || errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %s - transaction failed: %w", ErrInternal, operation, err)
}

func isDomainError(err error) bool {
	return resultOf(err) != resultError
}

const (
	resultSuccess = "success"
	resultError   = "error"
)

func resultOf(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrRoleMismatch):
		return "role_mismatch"
	case errors.Is(err, domain.ErrAuthorization):
		return "unauthorized"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, domain.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, domain.ErrSchedulingConflict):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	default:
		return resultError
	}
}

// sideEffectContext отвязывает побочный эффект от отмены запроса и ограничивает его по времени
func (s *Service) sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.sideEffectTimeout)
}

type noopMetrics struct{}

func (noopMetrics) ObserveTransition(string, string) {}
