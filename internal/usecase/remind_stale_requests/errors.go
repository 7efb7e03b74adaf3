package remind_stale_requests

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных параметрах use case
	ErrInvalidInput = errors.New("remind_stale_requests: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("remind_stale_requests: internal error")
)
