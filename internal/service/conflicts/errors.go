package conflicts

import "errors"

var (
	// ErrInternal возвращается при ошибке чтения активных записей
	ErrInternal = errors.New("conflicts: internal error")
)
