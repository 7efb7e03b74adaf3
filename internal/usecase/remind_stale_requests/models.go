package remind_stale_requests

import (
	"fmt"
	"time"
)

// DefaultBatchSize сколько записей читается из хранилища за один запрос
const DefaultBatchSize = 100

// Request параметры прохода
type Request struct {
	StaleAfter time.Duration // Возраст запроса, после которого нужно напоминание
	BatchSize  int           // Размер страницы при чтении, 0 - DefaultBatchSize
}

// Response итог прохода
type Response struct {
	Found    int // Неподтвержденных запросов старше порога
	Reminded int // Напоминаний доставлено
	Skipped  int // Уже напоминали недавно или у специалиста нет контакта
	Failed   int // Доставка не удалась
}

// ReminderMessage текст напоминания специалисту
func ReminderMessage(appointmentID int64) string {
	return fmt.Sprintf("Appointment %d is still awaiting your confirmation.", appointmentID)
}
