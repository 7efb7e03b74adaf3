package remind_stale_requests

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// UseCase напоминает специалистам о запросах, которые долго ждут подтверждения
// Записи не изменяются: use case только читает и отправляет уведомления
type UseCase struct {
	repo         AppointmentRepository
	persons      PersonDirectory
	notifier     NotificationDispatcher
	timeProvider TimeProvider
	logger       Logger

	// reminded время последнего напоминания по ID записи
	mu       sync.Mutex
	reminded map[int64]time.Time
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	repo AppointmentRepository,
	persons PersonDirectory,
	notifier NotificationDispatcher,
	logger Logger,
) *UseCase {
	return &UseCase{
		repo:         repo,
		persons:      persons,
		notifier:     notifier,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
		reminded:     make(map[int64]time.Time),
	}
}

// Execute выполняет один проход напоминаний
// Повторное напоминание по той же записи отправляется не раньше, чем через StaleAfter
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RemindStaleRequests: validation failed: %v", err)
		return nil, err
	}

	batchSize := req.BatchSize
	if batchSize == 0 {
		batchSize = DefaultBatchSize
	}

	now := uc.timeProvider.Now()

	stale, err := uc.listStale(ctx, now.Add(-req.StaleAfter), batchSize)
	if err != nil {
		uc.logger.Error("RemindStaleRequests: failed to list stale requests: %v", err)
		return nil, fmt.Errorf("%w: failed to list stale requests: %v", ErrInternal, err)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.forgetResolved(stale)

	resp := &Response{Found: len(stale)}
	for _, appt := range stale {
		if ctx.Err() != nil {
			return resp, fmt.Errorf("%w: %v", ErrInternal, ctx.Err())
		}

		if last, ok := uc.reminded[appt.ID]; ok && now.Sub(last) < req.StaleAfter {
			resp.Skipped++
			continue
		}

		switch uc.remind(ctx, appt) {
		case outcomeSent:
			uc.reminded[appt.ID] = now
			resp.Reminded++
		case outcomeNoContact:
			uc.reminded[appt.ID] = now
			resp.Skipped++
		default:
			resp.Failed++
		}
	}

	if resp.Found > 0 {
		uc.logger.Info("RemindStaleRequests: found=%d reminded=%d skipped=%d failed=%d",
			resp.Found, resp.Reminded, resp.Skipped, resp.Failed)
	}

	return resp, nil
}

// listStale читает все просроченные запросы страницами по batchSize, курсор - id последней записи
func (uc *UseCase) listStale(ctx context.Context, cutoff time.Time, batchSize int) ([]*domain.Appointment, error) {
	var (
		stale   []*domain.Appointment
		afterID int64
	)
	for {
		page, err := uc.repo.List(ctx, domain.AppointmentsFilter{
			Statuses:        []domain.AppointmentStatus{domain.StatusRequested},
			RequestedBefore: &cutoff,
			AfterID:         afterID,
			Order:           domain.OrderByID,
			Limit:           batchSize,
		})
		if err != nil {
			return nil, err
		}

		stale = append(stale, page...)
		if len(page) < batchSize {
			return stale, nil
		}
		afterID = page[len(page)-1].ID
	}
}

type outcome int

const (
	outcomeFailed outcome = iota
	outcomeSent
	outcomeNoContact
)

func (uc *UseCase) remind(ctx context.Context, appt *domain.Appointment) outcome {
	provider, err := uc.persons.FindByID(ctx, appt.ProviderID)
	if err != nil {
		uc.logger.Warn("RemindStaleRequests: failed to get provider id=%d for appointment id=%d: %v",
			appt.ProviderID, appt.ID, err)
		return outcomeFailed
	}

	if provider.Phone == "" {
		return outcomeNoContact
	}

	if !uc.notifier.Send(ctx, provider.Phone, ReminderMessage(appt.ID)) {
		uc.logger.Warn("RemindStaleRequests: reminder for appointment id=%d was not delivered", appt.ID)
		return outcomeFailed
	}

	return outcomeSent
}

// forgetResolved убирает записи, которые больше не ждут подтверждения
// Вызывается под uc.mu
func (uc *UseCase) forgetResolved(stale []*domain.Appointment) {
	pending := make(map[int64]struct{}, len(stale))
	for _, appt := range stale {
		pending[appt.ID] = struct{}{}
	}
	for id := range uc.reminded {
		if _, ok := pending[id]; !ok {
			delete(uc.reminded, id)
		}
	}
}
