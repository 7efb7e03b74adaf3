package get_free_slots

import (
	"fmt"
	"time"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is required", ErrInvalidInput)
	}

	if req.ProviderID <= 0 {
		return fmt.Errorf("%w: providerID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// validateDate проверяет, что день не в прошлом
func validateDate(day, now time.Time) error {
	if day.Before(startOfDay(now)) {
		return fmt.Errorf("%w: %s is in the past", ErrInvalidDate, day.Format("2006-01-02"))
	}
	return nil
}
