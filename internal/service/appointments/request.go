package appointments

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	apptRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	personClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/personservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/access"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflicts"
)

// RequestAppointment создает запись клиента к специалисту в статусе requested
//
// Проверки идут в порядке: валидация входных данных (scheduledAt строго в будущем),
// существование участников и их роли, права инициатора. Затем в сериализуемой транзакции
// под блокировками клиента и специалиста: лимит активных записей клиента, пересечение
// у клиента, пересечение у специалиста, вставка. Первая ошибка прерывает выполнение.
// Погодное предупреждение и уведомление специалиста выполняются после фиксации.
func (s *Service) RequestAppointment(ctx context.Context, caller domain.Caller, req *models.RequestAppointmentRequest) (resp *models.AppointmentResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "appointments.RequestAppointment",
		trace.WithAttributes(attribute.Int64("caller.id", caller.ID)))
	defer func() { s.finish(span, string(access.OpRequest), err) }()

	now := s.timeProvider.Now()

	// 1. Валидация входных данных
	draft, err := buildDraft(req, now)
	if err != nil {
		s.logger.Warn("RequestAppointment: validation failed for caller=%d: %v", caller.ID, err)
		return nil, err
	}

	s.logger.Info("RequestAppointment: client=%d, provider=%d, activity=%s, scheduledAt=%s",
		draft.ClientID, draft.ProviderID, draft.ActivityType, draft.ScheduledAt.Format("2006-01-02 15:04"))
	span.SetAttributes(
		attribute.Int64("appointment.client_id", draft.ClientID),
		attribute.Int64("appointment.provider_id", draft.ProviderID),
	)

	// 2. Участники и их роли
	if _, err := s.resolvePerson(ctx, draft.ClientID, domain.RoleClient); err != nil {
		return nil, err
	}
	provider, err := s.resolvePerson(ctx, draft.ProviderID, domain.RoleProvider)
	if err != nil {
		return nil, err
	}

	// 3. Права инициатора
	owners := access.Owners{ClientID: draft.ClientID, ProviderID: draft.ProviderID}
	if err := s.guard.Authorize(caller, access.OpRequest, owners); err != nil {
		s.logger.Warn("RequestAppointment: caller=%d (%s) denied: %v", caller.ID, caller.Role, err)
		return nil, err
	}

	// 4. Проверки и вставка в одной транзакции
	var created *domain.Appointment
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		c, err := s.createChecked(txCtx, draft)
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		err = txError("RequestAppointment", err)
		if errors.Is(err, ErrInternal) {
			s.logger.Error("RequestAppointment: client=%d, provider=%d: %v", draft.ClientID, draft.ProviderID, err)
		} else {
			s.logger.Warn("RequestAppointment: client=%d, provider=%d rejected: %v", draft.ClientID, draft.ProviderID, err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("appointment.id", created.ID))
	s.logger.Info("RequestAppointment: successfully created appointment id=%d", created.ID)

	// 5. Побочные эффекты после фиксации
	s.attachWeatherAdvisory(ctx, created)
	s.notifyPerson(ctx, provider, created)

	return models.FromDomainAppointment(created), nil
}

// createChecked выполняется внутри транзакции: check-then-insert неделим
func (s *Service) createChecked(ctx context.Context, draft *domain.Appointment) (*domain.Appointment, error) {
	if err := s.repo.LockActors(ctx, draft.ClientID, draft.ProviderID); err != nil {
		return nil, fmt.Errorf("%w: lock participants: %w", ErrInternal, err)
	}

	slot := draft.Slot()

	// Лимит активных записей клиента
	clientActive, err := s.checker.ActiveFor(ctx, conflicts.SideClient, draft.ClientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	if active := conflicts.CountActive(clientActive); !s.policy.HasCapacity(active) {
		return nil, fmt.Errorf("%w: client %d already has %d of %d active appointments",
			domain.ErrCapacityExceeded, draft.ClientID, active, s.policy.MaxActiveAppointments)
	}

	// Пересечение у клиента
	if err := conflicts.ConflictError(conflicts.SideClient, draft.ClientID, conflicts.FindOverlap(slot, clientActive)); err != nil {
		return nil, err
	}

	// Пересечение у специалиста
	if err := s.checker.Check(ctx, conflicts.SideProvider, draft.ProviderID, slot); err != nil {
		if errors.Is(err, domain.ErrSchedulingConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	created, err := s.repo.Create(ctx, draft)
	if err != nil {
		// Последний рубеж: ограничение хранилища на пересечение активных записей
		if errors.Is(err, apptRepo.ErrSlotTaken) {
			return nil, fmt.Errorf("%w: %v", domain.ErrSchedulingConflict, err)
		}
		return nil, fmt.Errorf("%w: create appointment: %w", ErrInternal, err)
	}

	return created, nil
}

// resolvePerson получает участника и проверяет его роль
func (s *Service) resolvePerson(ctx context.Context, id int64, role domain.Role) (*domain.Person, error) {
	person, err := s.persons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, personClient.ErrPersonNotFound) {
			s.logger.Warn("RequestAppointment: %s id=%d not found", role, id)
			return nil, fmt.Errorf("%w: %s %d", domain.ErrNotFound, role, id)
		}
		s.logger.Error("RequestAppointment: failed to get person id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get person: %v", ErrInternal, err)
	}

	if person.Role != role {
		s.logger.Warn("RequestAppointment: person id=%d has role %s, expected %s", id, person.Role, role)
		return nil, fmt.Errorf("%w: person %d is a %s, expected a %s", domain.ErrRoleMismatch, id, person.Role, role)
	}

	return person, nil
}
