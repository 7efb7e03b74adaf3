package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/conflicts"
)

// generateSlots генерирует сетку слотов дня с шагом в одно занятие
// Слоты, начинающиеся не позже now, отбрасываются: записаться можно только на будущее время
func generateSlots(day, now time.Time) []domain.Slot {
	end := day.AddDate(0, 0, 1)

	slots := make([]domain.Slot, 0, int(end.Sub(day)/domain.SessionDuration))
	for start := day; start.Before(end); start = start.Add(domain.SessionDuration) {
		if !start.After(now) {
			continue
		}
		slots = append(slots, domain.NewSlot(start))
	}
	return slots
}

// filterFree оставляет слоты, не пересекающиеся ни с одной активной записью
// Смежные интервалы не считаются пересечением
func filterFree(slots []domain.Slot, busy []*domain.Appointment) []Slot {
	free := make([]Slot, 0, len(slots))
	for _, slot := range slots {
		if conflicts.FindOverlap(slot, busy) != nil {
			continue
		}
		free = append(free, Slot{StartsAt: slot.Start, EndsAt: slot.End})
	}
	return free
}

// startOfDay обнуляет время в UTC
func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
