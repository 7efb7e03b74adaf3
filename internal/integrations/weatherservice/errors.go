package weatherservice

import "errors"

var (
	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("weatherservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("weatherservice client: invalid response")

	// ErrRateLimited возвращается, когда запрос не дождался разрешения лимитера
	ErrRateLimited = errors.New("weatherservice client: rate limited")

	// ErrCache возвращается при ошибках кэша прогнозов
	ErrCache = errors.New("weatherservice cache: error")
)
