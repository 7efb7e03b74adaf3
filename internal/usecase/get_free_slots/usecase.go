package get_free_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	personClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/personservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflicts"
)

// UseCase use case для получения свободных слотов специалиста на день
// Результат носит справочный характер: окончательная проверка пересечений выполняется при записи
type UseCase struct {
	checker      *conflicts.Checker
	persons      PersonDirectory
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(reader AppointmentReader, persons PersonDirectory, logger Logger) *UseCase {
	return &UseCase{
		checker:      conflicts.NewChecker(reader),
		persons:      persons,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет use case получения свободных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetFreeSlots: validation failed: %v", err)
		return nil, err
	}

	day := startOfDay(req.Date)
	now := uc.timeProvider.Now()

	uc.logger.Info("GetFreeSlots: %s=%d, provider=%d, date=%s",
		req.Caller.Role, req.Caller.ID, req.ProviderID, day.Format(domain.DateFormat))

	if err := validateDate(day, now); err != nil {
		uc.logger.Warn("GetFreeSlots: date validation failed: %v", err)
		return nil, err
	}

	// 2. Специалист существует и действительно специалист
	provider, err := uc.persons.FindByID(ctx, req.ProviderID)
	if err != nil {
		if errors.Is(err, personClient.ErrPersonNotFound) {
			uc.logger.Warn("GetFreeSlots: provider id=%d not found", req.ProviderID)
			return nil, ErrProviderNotFound
		}
		uc.logger.Error("GetFreeSlots: failed to get provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: failed to get provider: %v", ErrInternal, err)
	}
	if provider.Role != domain.RoleProvider {
		uc.logger.Warn("GetFreeSlots: person id=%d has role %s", req.ProviderID, provider.Role)
		return nil, ErrNotProvider
	}

	// 3. Занятые интервалы специалиста и, для клиента, его собственные
	busy, err := uc.checker.ActiveFor(ctx, conflicts.SideProvider, req.ProviderID)
	if err != nil {
		uc.logger.Error("GetFreeSlots: failed to get appointments of provider id=%d: %v", req.ProviderID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if req.Caller.Role == domain.RoleClient {
		own, err := uc.checker.ActiveFor(ctx, conflicts.SideClient, req.Caller.ID)
		if err != nil {
			uc.logger.Error("GetFreeSlots: failed to get appointments of client id=%d: %v", req.Caller.ID, err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		busy = append(busy, own...)
	}

	// 4. Сетка дня минус занятые интервалы
	slots := filterFree(generateSlots(day, now), busy)

	uc.logger.Info("GetFreeSlots: %d free slots for provider=%d on %s",
		len(slots), req.ProviderID, day.Format(domain.DateFormat))

	return &Response{
		Date:       day.Format(domain.DateFormat),
		ProviderID: req.ProviderID,
		Slots:      slots,
	}, nil
}
