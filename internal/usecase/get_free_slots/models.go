package get_free_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса свободных слотов специалиста
type Request struct {
	Caller     domain.Caller // Инициатор; для клиента исключаются и его собственные занятые слоты
	ProviderID int64         // ID специалиста
	Date       time.Time     // День в UTC (время игнорируется)
}

// Response модель ответа со списком свободных слотов
type Response struct {
	Date       string `json:"date"` // "2025-10-15"
	ProviderID int64  `json:"providerId"`
	Slots      []Slot `json:"slots"`
}

// Slot свободный интервал длиной в одно занятие
type Slot struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}
