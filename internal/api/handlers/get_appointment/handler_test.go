package get_appointment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	err error
}

func (f *fakeService) GetAppointment(_ context.Context, _ domain.Caller, id int64) (*models.AppointmentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentResponse{ID: id, Status: "requested"}, nil
}

func serve(h *Handler, id string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/appointments/{appointmentId}", h.Handle).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments/"+id, nil)
	req = req.WithContext(middleware.WithCaller(req.Context(), domain.Caller{ID: 1, Role: domain.RoleClient}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler(t *testing.T) {
	rec := serve(NewHandler(&fakeService{}, logger.NewNop()), "5")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":5`)

	assert.Equal(t, http.StatusBadRequest, serve(NewHandler(&fakeService{}, logger.NewNop()), "x").Code)

	notFound := &fakeService{err: fmt.Errorf("%w: appointment id=5", domain.ErrNotFound)}
	assert.Equal(t, http.StatusNotFound, serve(NewHandler(notFound, logger.NewNop()), "5").Code)

	broken := &fakeService{err: assert.AnError}
	assert.Equal(t, http.StatusInternalServerError, serve(NewHandler(broken, logger.NewNop()), "5").Code)
}
