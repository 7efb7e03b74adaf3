package domain

// Role роль участника записи
type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
)

// IsValid returns true if the role is client or provider
func (r Role) IsValid() bool {
	return r == RoleClient || r == RoleProvider
}

// Person участник системы, полученный из справочника людей
type Person struct {
	ID    int64
	Role  Role
	Phone string // Контакт для уведомлений, может быть пустым
}

// Caller аутентифицированный инициатор операции
type Caller struct {
	ID   int64
	Role Role
}
