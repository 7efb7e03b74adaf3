package personservice

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Person модель участника из PersonService
type Person struct {
	ID    int64  `json:"id"`
	Role  string `json:"role"`  // client | provider
	Phone string `json:"phone"` // Может быть пустым
}

// ToDomain конвертирует ответ сервиса в domain модель
func (p Person) ToDomain() (*domain.Person, error) {
	role := domain.Role(strings.ToLower(strings.TrimSpace(p.Role)))
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q for person id=%d", ErrInvalidResponse, p.Role, p.ID)
	}

	return &domain.Person{
		ID:    p.ID,
		Role:  role,
		Phone: strings.TrimSpace(p.Phone),
	}, nil
}
