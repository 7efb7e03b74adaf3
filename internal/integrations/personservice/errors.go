package personservice

import "errors"

var (
	// ErrPersonNotFound возвращается, когда участник не найден
	ErrPersonNotFound = errors.New("personservice client: person not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("personservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("personservice client: invalid response")
)
