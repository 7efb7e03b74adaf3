package access

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Operation операция, требующая проверки прав
type Operation string

const (
	OpRequest  Operation = "request"
	OpConfirm  Operation = "confirm"
	OpStart    Operation = "start"
	OpComplete Operation = "complete"
	OpCancel   Operation = "cancel"
	OpView     Operation = "view"
)

// Owners владельцы ресурса, против которых проверяется инициатор
type Owners struct {
	ClientID   int64
	ProviderID int64
}

// OwnersOf returns the owner ids of an appointment
func OwnersOf(a *domain.Appointment) Owners {
	return Owners{ClientID: a.ClientID, ProviderID: a.ProviderID}
}

type ownerField int

const (
	ownerClient ownerField = iota
	ownerProvider
)

// rule разрешает операцию инициатору с ролью role, если его ID совпадает с полем owner
type rule struct {
	role  domain.Role
	owner ownerField
}

// rules таблица прав: операция -> допустимые пары (роль, поле владельца)
var rules = map[Operation][]rule{
	OpRequest:  {{role: domain.RoleClient, owner: ownerClient}},
	OpConfirm:  {{role: domain.RoleProvider, owner: ownerProvider}},
	OpStart:    {{role: domain.RoleProvider, owner: ownerProvider}},
	OpComplete: {{role: domain.RoleProvider, owner: ownerProvider}},
	OpCancel: {
		{role: domain.RoleClient, owner: ownerClient},
		{role: domain.RoleProvider, owner: ownerProvider},
	},
	OpView: {
		{role: domain.RoleClient, owner: ownerClient},
		{role: domain.RoleProvider, owner: ownerProvider},
	},
}

var transitionOps = map[domain.Transition]Operation{
	domain.TransitionConfirm:  OpConfirm,
	domain.TransitionStart:    OpStart,
	domain.TransitionComplete: OpComplete,
	domain.TransitionCancel:   OpCancel,
}

// OperationFor returns the operation guarding a lifecycle transition
func OperationFor(t domain.Transition) (Operation, bool) {
	op, ok := transitionOps[t]
	return op, ok
}

// Guard проверяет роль и владение ресурсом. Не имеет состояния и побочных эффектов.
type Guard struct{}

// NewGuard создает новый экземпляр Guard
func NewGuard() *Guard {
	return &Guard{}
}

// Authorize returns nil if the caller may perform op on a resource owned by owners,
// otherwise an error wrapping domain.ErrAuthorization
func (g *Guard) Authorize(caller domain.Caller, op Operation, owners Owners) error {
	allowed, ok := rules[op]
	if !ok {
		return fmt.Errorf("%w: unknown operation %q", domain.ErrAuthorization, op)
	}

	roleMatched := false
	for _, r := range allowed {
		if caller.Role != r.role {
			continue
		}
		roleMatched = true
		if caller.ID == owners.id(r.owner) {
			return nil
		}
	}

	if !roleMatched {
		return fmt.Errorf("%w: role %q may not %s appointments", domain.ErrAuthorization, caller.Role, op)
	}
	return fmt.Errorf("%w: person %d does not own this appointment", domain.ErrAuthorization, caller.ID)
}

// CanView reports whether the caller is a participant allowed to see the appointment
func (g *Guard) CanView(caller domain.Caller, a *domain.Appointment) bool {
	return g.Authorize(caller, OpView, OwnersOf(a)) == nil
}

func (o Owners) id(f ownerField) int64 {
	if f == ownerProvider {
		return o.ProviderID
	}
	return o.ClientID
}
