package get_free_slots

import "errors"

var (
	// ErrProviderNotFound возвращается, когда специалист не найден
	ErrProviderNotFound = errors.New("provider not found")

	// ErrNotProvider возвращается, когда участник не является специалистом
	ErrNotProvider = errors.New("person is not a provider")

	// ErrInvalidDate возвращается, когда дата в прошлом
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("usecase: internal error")
)
