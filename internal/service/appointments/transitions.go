package appointments

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/service/access"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// ConfirmAppointment подтверждает запись: requested -> confirmed. Только специалист записи.
func (s *Service) ConfirmAppointment(ctx context.Context, caller domain.Caller, id int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, caller, id, domain.TransitionConfirm, nil)
}

// StartAppointment начинает занятие: confirmed -> in_progress. Только специалист записи.
func (s *Service) StartAppointment(ctx context.Context, caller domain.Caller, id int64) (*models.AppointmentResponse, error) {
	return s.transition(ctx, caller, id, domain.TransitionStart, nil)
}

// CompleteAppointment завершает занятие: in_progress -> completed
// Только специалист записи, заметки специалиста обязательны
func (s *Service) CompleteAppointment(ctx context.Context, caller domain.Caller, id int64, req *models.CompleteAppointmentRequest) (*models.AppointmentResponse, error) {
	if req == nil {
		req = &models.CompleteAppointmentRequest{}
	}

	notes, err := validateNotes("providerNotes", req.ProviderNotes)
	if err != nil {
		s.logger.Warn("CompleteAppointment: validation failed for appointment id=%d: %v", id, err)
		s.metrics.ObserveTransition(string(access.OpComplete), resultOf(err))
		return nil, err
	}

	return s.transition(ctx, caller, id, domain.TransitionComplete, func(a *domain.Appointment) {
		a.ProviderNotes = &notes
	})
}

// CancelAppointment отменяет запись из requested или confirmed
// Отменить может клиент или специалист записи; отказ специалиста от запроса - это отмена с причиной
func (s *Service) CancelAppointment(ctx context.Context, caller domain.Caller, id int64, req *models.CancelAppointmentRequest) (*models.AppointmentResponse, error) {
	if req == nil {
		req = &models.CancelAppointmentRequest{}
	}

	reason, err := validateCancellationReason(req.Reason)
	if err != nil {
		s.logger.Warn("CancelAppointment: validation failed for appointment id=%d: %v", id, err)
		s.metrics.ObserveTransition(string(access.OpCancel), resultOf(err))
		return nil, err
	}

	return s.transition(ctx, caller, id, domain.TransitionCancel, func(a *domain.Appointment) {
		a.CancellationReason = reason
	})
}

// transition общий путь всех переходов по существующей записи:
// чтение с блокировкой строки, проверка прав, переход по автомату, сохранение с проверкой исходного статуса.
// Уведомление второй стороне отправляется после фиксации.
func (s *Service) transition(
	ctx context.Context,
	caller domain.Caller,
	id int64,
	t domain.Transition,
	mutate func(a *domain.Appointment),
) (resp *models.AppointmentResponse, err error) {
	op, ok := access.OperationFor(t)
	if !ok {
		return nil, fmt.Errorf("%w: unknown operation %q", domain.ErrInvalidTransition, t)
	}

	name := operationName(t)
	ctx, span := s.tracer.Start(ctx, "appointments."+name, trace.WithAttributes(
		attribute.Int64("appointment.id", id),
		attribute.Int64("caller.id", caller.ID),
		attribute.String("caller.role", string(caller.Role)),
	))
	defer func() { s.finish(span, string(op), err) }()

	s.logger.Info("%s: appointment id=%d by %s=%d", name, id, caller.Role, caller.ID)

	if err := validateID(id); err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()

	var updated *domain.Appointment
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		appt, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, apptRepo.ErrAppointmentNotFound) {
				return fmt.Errorf("%w: appointment %d", domain.ErrNotFound, id)
			}
			return fmt.Errorf("%w: get appointment: %w", ErrInternal, err)
		}

		if err := s.guard.Authorize(caller, op, access.OwnersOf(appt)); err != nil {
			return err
		}

		from := appt.Status
		if err := appt.Apply(t, now); err != nil {
			return err
		}
		if mutate != nil {
			mutate(appt)
		}

		if err := s.repo.UpdateTransition(txCtx, appt, from); err != nil {
			switch {
			case errors.Is(err, apptRepo.ErrStatusChanged):
				return fmt.Errorf("%w: %v", domain.ErrInvalidTransition, err)
			case errors.Is(err, apptRepo.ErrAppointmentNotFound):
				return fmt.Errorf("%w: appointment %d", domain.ErrNotFound, id)
			default:
				return fmt.Errorf("%w: update appointment: %w", ErrInternal, err)
			}
		}

		updated = appt
		return nil
	})
	if err != nil {
		err = txError(name, err)
		if errors.Is(err, ErrInternal) {
			s.logger.Error("%s: appointment id=%d: %v", name, id, err)
		} else {
			s.logger.Warn("%s: appointment id=%d rejected: %v", name, id, err)
		}
		return nil, err
	}

	s.logger.Info("%s: appointment id=%d is now %s", name, id, updated.Status)

	s.notify(ctx, counterpartOf(caller, updated), updated)

	return models.FromDomainAppointment(updated), nil
}

// counterpartOf возвращает ID стороны, которую нужно уведомить о переходе
func counterpartOf(caller domain.Caller, a *domain.Appointment) int64 {
	if caller.Role == domain.RoleClient && caller.ID == a.ClientID {
		return a.ProviderID
	}
	return a.ClientID
}

func operationName(t domain.Transition) string {
	switch t {
	case domain.TransitionConfirm:
		return "ConfirmAppointment"
	case domain.TransitionStart:
		return "StartAppointment"
	case domain.TransitionComplete:
		return "CompleteAppointment"
	case domain.TransitionCancel:
		return "CancelAppointment"
	}
	return string(t)
}
