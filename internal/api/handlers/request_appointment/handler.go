package request_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	msgUnauthorized       = "требуется аутентификация"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidScheduledAt = "некорректный формат времени записи, ожидается RFC3339"
	msgPersonNotFound     = "клиент или специалист не найден"
	msgRoleMismatch       = "участник имеет другую роль"
	msgForbidden          = "запись от имени другого клиента запрещена"
	msgCapacityExceeded   = "достигнут лимит активных записей"
	msgSlotNotAvailable   = "выбранное время пересекается с другой записью"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req RequestAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(caller)
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid scheduledAt %q: %v", req.ScheduledAt, err)
		handlers.RespondBadRequest(w, msgInvalidScheduledAt)
		return
	}

	result, err := h.service.RequestAppointment(r.Context(), caller, serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			h.logger.Warn("POST /appointments - Validation failed: caller_id=%d, error=%v", caller.ID, err)
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, domain.ErrNotFound):
			h.logger.Warn("POST /appointments - Person not found: client_id=%d, provider_id=%d",
				serviceReq.ClientID, serviceReq.ProviderID)
			handlers.RespondNotFound(w, msgPersonNotFound)

		case errors.Is(err, domain.ErrRoleMismatch):
			h.logger.Warn("POST /appointments - Role mismatch: client_id=%d, provider_id=%d",
				serviceReq.ClientID, serviceReq.ProviderID)
			handlers.RespondUnprocessable(w, msgRoleMismatch)

		case errors.Is(err, domain.ErrAuthorization):
			h.logger.Warn("POST /appointments - Forbidden: caller_id=%d, client_id=%d", caller.ID, serviceReq.ClientID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrCapacityExceeded):
			h.logger.Warn("POST /appointments - Capacity exceeded: client_id=%d", serviceReq.ClientID)
			handlers.RespondConflict(w, msgCapacityExceeded)

		case errors.Is(err, domain.ErrSchedulingConflict):
			h.logger.Warn("POST /appointments - Scheduling conflict: client_id=%d, provider_id=%d, error=%v",
				serviceReq.ClientID, serviceReq.ProviderID, err)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		default:
			h.logger.Error("POST /appointments - Failed to request appointment: client_id=%d, provider_id=%d, error=%v",
				serviceReq.ClientID, serviceReq.ProviderID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment requested: appointment_id=%d, client_id=%d, provider_id=%d",
		result.ID, result.ClientID, result.ProviderID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
