package conflicts

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Side сторона записи, для которой проверяется пересечение
type Side string

const (
	SideClient   Side = "client"
	SideProvider Side = "provider"
)

// Checker проверяет пересечение интервала с активными записями участника.
// Атомарность check-then-insert обеспечивает вызывающий: проверка должна выполняться
// внутри той же транзакции, что и вставка.
type Checker struct {
	reader AppointmentReader
}

// NewChecker создает новый экземпляр Checker
func NewChecker(reader AppointmentReader) *Checker {
	return &Checker{reader: reader}
}

// ActiveFor returns the active appointments of the actor on the given side
func (c *Checker) ActiveFor(ctx context.Context, side Side, actorID int64) ([]*domain.Appointment, error) {
	filter := domain.AppointmentsFilter{Statuses: domain.ActiveStatuses}
	switch side {
	case SideClient:
		filter.ClientID = &actorID
	case SideProvider:
		filter.ProviderID = &actorID
	default:
		return nil, fmt.Errorf("%w: unknown side %q", ErrInternal, side)
	}

	appts, err := c.reader.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list active appointments of %s %d: %w", ErrInternal, side, actorID, err)
	}
	return appts, nil
}

// Check returns domain.ErrSchedulingConflict if the slot overlaps any active appointment of the actor
func (c *Checker) Check(ctx context.Context, side Side, actorID int64, slot domain.Slot) error {
	active, err := c.ActiveFor(ctx, side, actorID)
	if err != nil {
		return err
	}
	return ConflictError(side, actorID, FindOverlap(slot, active))
}

// FindOverlap returns the first active appointment whose slot overlaps the candidate, or nil.
// Inactive appointments are ignored even if the reader returned them.
func FindOverlap(slot domain.Slot, appts []*domain.Appointment) *domain.Appointment {
	for _, a := range appts {
		if a == nil || !a.IsActive() {
			continue
		}
		if slot.Overlaps(a.Slot()) {
			return a
		}
	}
	return nil
}

// CountActive returns the number of active appointments in the list
func CountActive(appts []*domain.Appointment) int {
	n := 0
	for _, a := range appts {
		if a != nil && a.IsActive() {
			n++
		}
	}
	return n
}

// ConflictError wraps domain.ErrSchedulingConflict for a found overlap, nil otherwise
func ConflictError(side Side, actorID int64, overlap *domain.Appointment) error {
	if overlap == nil {
		return nil
	}
	return fmt.Errorf("%w: %s %d is already booked at %s by appointment %d",
		domain.ErrSchedulingConflict, side, actorID,
		overlap.ScheduledAt.UTC().Format("2006-01-02 15:04"), overlap.ID)
}
