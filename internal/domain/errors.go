package domain

import "errors"

// Таксономия ошибок жизненного цикла записи.
// Операции оборачивают их через fmt.Errorf("%w: ...", ErrX), вызывающие проверяют errors.Is.
var (
	// ErrNotFound неизвестная запись или участник
	ErrNotFound = errors.New("not found")

	// ErrRoleMismatch идентификатор относится к участнику с другой ролью
	ErrRoleMismatch = errors.New("role mismatch")

	// ErrAuthorization инициатору запрещена операция над записью
	ErrAuthorization = errors.New("not authorized")

	// ErrValidation некорректные входные данные
	ErrValidation = errors.New("validation failed")

	// ErrCapacityExceeded достигнут лимит активных записей клиента
	ErrCapacityExceeded = errors.New("active appointment limit reached")

	// ErrSchedulingConflict интервал пересекается с активной записью клиента или специалиста
	ErrSchedulingConflict = errors.New("scheduling conflict")

	// ErrInvalidTransition операция недопустима из текущего статуса
	ErrInvalidTransition = errors.New("invalid status transition")
)
