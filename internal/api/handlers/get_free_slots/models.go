package get_free_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	getFreeSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_free_slots"
)

// ToUseCaseRequest парсит дату и собирает запрос к use case
func ToUseCaseRequest(caller domain.Caller, providerID int64, date string) (*getFreeSlots.Request, error) {
	day, err := time.ParseInLocation(domain.DateFormat, date, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", date, err)
	}

	return &getFreeSlots.Request{
		Caller:     caller,
		ProviderID: providerID,
		Date:       day,
	}, nil
}
