package complete_appointment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	gotID  int64
	gotReq *models.CompleteAppointmentRequest
	err    error
}

func (f *fakeService) CompleteAppointment(_ context.Context, _ domain.Caller, id int64, req *models.CompleteAppointmentRequest) (*models.AppointmentResponse, error) {
	f.gotID = id
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentResponse{ID: id, Status: "completed"}, nil
}

func serve(h *Handler, id string, body string) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/api/v1/appointments/{appointmentId}/complete", h.Handle).Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/complete", strings.NewReader(body))
	req = req.WithContext(middleware.WithCaller(req.Context(), domain.Caller{ID: 10, Role: domain.RoleProvider}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_OK(t *testing.T) {
	svc := &fakeService{}
	h := NewHandler(svc, logger.NewNop())

	rec := serve(h, "7", `{"providerNotes":"good session"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.gotID)
	assert.Contains(t, rec.Body.String(), `"status":"completed"`)
	assert.Equal(t, "good session", svc.gotReq.ProviderNotes)
}

func TestHandler_InvalidID(t *testing.T) {
	h := NewHandler(&fakeService{}, logger.NewNop())

	assert.Equal(t, http.StatusBadRequest, serve(h, "abc", `{"providerNotes":"good session"}`).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "0", `{"providerNotes":"good session"}`).Code)
}

func TestHandler_RequiresBody(t *testing.T) {
	h := NewHandler(&fakeService{}, logger.NewNop())

	assert.Equal(t, http.StatusBadRequest, serve(h, "7", ``).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, "7", `{"notes":"x"}`).Code)
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{err: fmt.Errorf("%w: appointment id=7", domain.ErrNotFound), status: http.StatusNotFound},
		{err: fmt.Errorf("%w: complete", domain.ErrAuthorization), status: http.StatusForbidden},
		{err: fmt.Errorf("%w: complete from completed", domain.ErrInvalidTransition), status: http.StatusConflict},
		{err: fmt.Errorf("%w: bad input", domain.ErrValidation), status: http.StatusBadRequest},
		{err: assert.AnError, status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewHandler(&fakeService{err: tt.err}, logger.NewNop())
			assert.Equal(t, tt.status, serve(h, "7", `{"providerNotes":"good session"}`).Code)
		})
	}
}
