package personservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/internal/persons/1":
			_, _ = w.Write([]byte(`{"id":1,"role":"client","phone":" +15550001 "}`))
		case "/internal/persons/2":
			_, _ = w.Write([]byte(`{"id":2,"role":"PROVIDER"}`))
		case "/internal/persons/3":
			_, _ = w.Write([]byte(`{"id":3,"role":"admin"}`))
		case "/internal/persons/4":
			_, _ = w.Write([]byte(`not json`))
		case "/internal/persons/5":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FindByID(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL+"/", time.Second, logger.NewNop())
	ctx := context.Background()

	client1, err := client.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, &domain.Person{ID: 1, Role: domain.RoleClient, Phone: "+15550001"}, client1)

	provider, err := client.FindByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleProvider, provider.Role)
	assert.Empty(t, provider.Phone)

	_, err = client.FindByID(ctx, 99)
	assert.ErrorIs(t, err, ErrPersonNotFound)

	_, err = client.FindByID(ctx, 3)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = client.FindByID(ctx, 4)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = client.FindByID(ctx, 5)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_Unreachable(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, 100*time.Millisecond, logger.NewNop()).FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, ErrInternal)
}
