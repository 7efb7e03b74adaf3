package appointments

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// GetAppointment получает запись по ID
// Для инициатора, который не является ни клиентом, ни специалистом записи,
// запись считается несуществующей
func (s *Service) GetAppointment(ctx context.Context, caller domain.Caller, id int64) (resp *models.AppointmentResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "appointments.GetAppointment", trace.WithAttributes(
		attribute.Int64("appointment.id", id),
		attribute.Int64("caller.id", caller.ID),
	))
	defer func() { endSpan(span, err) }()

	s.logger.Info("GetAppointment: fetching appointment id=%d for %s=%d", id, caller.Role, caller.ID)

	if err := validateID(id); err != nil {
		return nil, err
	}

	appt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
			s.logger.Warn("GetAppointment: appointment id=%d not found", id)
			return nil, fmt.Errorf("%w: appointment %d", domain.ErrNotFound, id)
		}
		s.logger.Error("GetAppointment: repository error for appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetAppointment - repository error: %v", ErrInternal, err)
	}

	if !s.guard.CanView(caller, appt) {
		s.logger.Warn("GetAppointment: %s=%d is not a participant of appointment id=%d", caller.Role, caller.ID, id)
		return nil, fmt.Errorf("%w: appointment %d", domain.ErrNotFound, id)
	}

	return models.FromDomainAppointment(appt), nil
}

// ListAppointments получает записи инициатора (как клиента или как специалиста)
// Сортировка: scheduledAt по возрастанию, затем id. Опционально фильтрует по статусу.
func (s *Service) ListAppointments(ctx context.Context, caller domain.Caller, req *models.ListAppointmentsRequest) (resp *models.AppointmentListResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "appointments.ListAppointments", trace.WithAttributes(
		attribute.Int64("caller.id", caller.ID),
		attribute.String("caller.role", string(caller.Role)),
	))
	defer func() { endSpan(span, err) }()

	s.logger.Info("ListAppointments: fetching appointments for %s=%d", caller.Role, caller.ID)

	filter := domain.AppointmentsFilter{}
	switch caller.Role {
	case domain.RoleClient:
		filter.ClientID = &caller.ID
	case domain.RoleProvider:
		filter.ProviderID = &caller.ID
	default:
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrAuthorization, caller.Role)
	}

	if req != nil && req.Status != nil {
		status, err := models.ToDomainStatus(*req.Status)
		if err != nil {
			s.logger.Warn("ListAppointments: invalid status=%s for %s=%d", *req.Status, caller.Role, caller.ID)
			return nil, fmt.Errorf("%w: invalid status %q", domain.ErrValidation, *req.Status)
		}
		filter.Statuses = []domain.AppointmentStatus{status}
	}

	appts, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("ListAppointments: repository error for %s=%d: %v", caller.Role, caller.ID, err)
		return nil, fmt.Errorf("%w: ListAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListAppointments: successfully fetched %d appointments for %s=%d", len(appts), caller.Role, caller.ID)
	return models.FromDomainAppointmentList(appts), nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, resultOf(err))
	}
	span.End()
}
