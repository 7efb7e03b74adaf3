package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
)

// Store хранилище записей в памяти с теми же контрактами, что и postgres-репозиторий
// Используется в тестах и при database.driver = "memory"
type Store struct {
	mu           sync.RWMutex
	nextID       int64
	appointments map[int64]*domain.Appointment
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		nextID:       1,
		appointments: make(map[int64]*domain.Appointment),
	}
}

// Create сохраняет новую запись и присваивает ей ID
// Как и EXCLUDE ограничение в postgres, отклоняет пересечение с активной записью
// того же клиента или специалиста
func (s *Store) Create(_ context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if appt.IsActive() {
		slot := appt.Slot()
		for _, existing := range s.appointments {
			if !existing.IsActive() || !slot.Overlaps(existing.Slot()) {
				continue
			}
			if existing.ProviderID == appt.ProviderID || existing.ClientID == appt.ClientID {
				return nil, fmt.Errorf("%w: overlaps appointment id=%d", appointment.ErrSlotTaken, existing.ID)
			}
		}
	}

	created := appt.Clone()
	created.ID = s.nextID
	created.WeatherAdvisory = nil
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.RequestedAt
	}
	s.nextID++

	s.appointments[created.ID] = created
	return created.Clone(), nil
}

// GetByID возвращает копию записи
func (s *Store) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	appt, ok := s.appointments[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return appt.Clone(), nil
}

// List возвращает копии записей по фильтру, отсортированные по scheduledAt, затем по id
func (s *Store) List(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Appointment, 0)
	for _, appt := range s.appointments {
		if matches(appt, filter) {
			result = append(result, appt.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if filter.Order == domain.OrderByID {
			return result[i].ID < result[j].ID
		}
		if !result[i].ScheduledAt.Equal(result[j].ScheduledAt) {
			return result[i].ScheduledAt.Before(result[j].ScheduledAt)
		}
		return result[i].ID < result[j].ID
	})

	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

// UpdateTransition сохраняет запись, если её статус в хранилище всё ещё from
func (s *Store) UpdateTransition(_ context.Context, appt *domain.Appointment, from domain.AppointmentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.appointments[appt.ID]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	if stored.Status != from {
		return fmt.Errorf("%w: appointment id=%d is %s, expected %s",
			appointment.ErrStatusChanged, appt.ID, stored.Status, from)
	}

	updated := appt.Clone()
	updated.WeatherAdvisory = nil
	s.appointments[appt.ID] = updated
	return nil
}

// LockActors ничего не делает: эксклюзивность обеспечивает TxManager
func (s *Store) LockActors(_ context.Context, _, _ int64) error {
	return nil
}

func (s *Store) snapshot() (map[int64]*domain.Appointment, int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make(map[int64]*domain.Appointment, len(s.appointments))
	for id, appt := range s.appointments {
		copied[id] = appt.Clone()
	}
	return copied, s.nextID
}

func (s *Store) restore(appointments map[int64]*domain.Appointment, nextID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appointments = appointments
	s.nextID = nextID
}

func matches(appt *domain.Appointment, filter domain.AppointmentsFilter) bool {
	if filter.ClientID != nil && appt.ClientID != *filter.ClientID {
		return false
	}
	if filter.ProviderID != nil && appt.ProviderID != *filter.ProviderID {
		return false
	}
	if filter.RequestedBefore != nil && !appt.RequestedAt.Before(*filter.RequestedBefore) {
		return false
	}
	if filter.AfterID > 0 && appt.ID <= filter.AfterID {
		return false
	}
	if len(filter.Statuses) == 0 {
		return true
	}
	for _, status := range filter.Statuses {
		if appt.Status == status {
			return true
		}
	}
	return false
}
