package remind_stale_requests

import "fmt"

func validateRequest(req *Request) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.StaleAfter <= 0 {
		return fmt.Errorf("%w: stale_after must be positive, got %s", ErrInvalidInput, req.StaleAfter)
	}
	if req.BatchSize < 0 {
		return fmt.Errorf("%w: batch_size must not be negative, got %d", ErrInvalidInput, req.BatchSize)
	}
	return nil
}
