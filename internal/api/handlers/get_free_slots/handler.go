package get_free_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	getFreeSlots "github.com/m04kA/SMC-AppointmentService/internal/usecase/get_free_slots"
)

const (
	msgUnauthorized      = "требуется аутентификация"
	msgInvalidProviderID = "некорректный ID специалиста"
	msgMissingDate       = "дата обязательна"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgPastDate          = "дата в прошлом"
	msgProviderNotFound  = "специалист не найден"
	msgNotProvider       = "участник не является специалистом"
)

type Handler struct {
	useCase FreeSlotsUseCase
	logger  Logger
}

func NewHandler(useCase FreeSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/providers/{providerId}/free-slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	caller, ok := middleware.GetCaller(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	rawID := mux.Vars(r)["providerId"]
	providerID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || providerID <= 0 {
		h.logger.Warn("GET /providers/{id}/free-slots - Invalid provider ID: %q", rawID)
		handlers.RespondBadRequest(w, msgInvalidProviderID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /providers/{id}/free-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(caller, providerID, dateStr)
	if err != nil {
		h.logger.Warn("GET /providers/{id}/free-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getFreeSlots.ErrInvalidDate):
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, getFreeSlots.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		case errors.Is(err, getFreeSlots.ErrProviderNotFound):
			h.logger.Warn("GET /providers/{id}/free-slots - Provider not found: provider_id=%d", providerID)
			handlers.RespondNotFound(w, msgProviderNotFound)

		case errors.Is(err, getFreeSlots.ErrNotProvider):
			h.logger.Warn("GET /providers/{id}/free-slots - Person is not a provider: person_id=%d", providerID)
			handlers.RespondUnprocessable(w, msgNotProvider)

		default:
			h.logger.Error("GET /providers/{id}/free-slots - Failed to get slots: provider_id=%d, error=%v",
				providerID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /providers/{id}/free-slots - Slots retrieved successfully: provider_id=%d, slots_count=%d",
		providerID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, result)
}
