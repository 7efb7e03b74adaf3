package appointments

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memstore"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/personservice"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// now фиксированное "текущее" время всех тестов
var now = time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

const (
	clientC   int64 = 1
	clientD   int64 = 2
	clientE   int64 = 3
	providerP int64 = 10
	providerQ int64 = 11
	// providerSilent не имеет контакта для уведомлений
	providerSilent int64 = 19
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakePersons struct {
	people map[int64]*domain.Person
	err    error
}

func newFakePersons() *fakePersons {
	people := map[int64]*domain.Person{
		clientC:        {ID: clientC, Role: domain.RoleClient, Phone: "+1000001"},
		clientD:        {ID: clientD, Role: domain.RoleClient, Phone: "+1000002"},
		clientE:        {ID: clientE, Role: domain.RoleClient},
		providerSilent: {ID: providerSilent, Role: domain.RoleProvider},
	}
	for id := providerP; id < providerP+8; id++ {
		people[id] = &domain.Person{ID: id, Role: domain.RoleProvider, Phone: "+2000000"}
	}
	for id := int64(100); id < 120; id++ {
		people[id] = &domain.Person{ID: id, Role: domain.RoleClient, Phone: "+3000000"}
	}
	return &fakePersons{people: people}
}

func (f *fakePersons) FindByID(_ context.Context, id int64) (*domain.Person, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.people[id]
	if !ok {
		return nil, personservice.ErrPersonNotFound
	}
	c := *p
	return &c, nil
}

type sentMessage struct {
	contact string
	message string
}

type fakeNotifier struct {
	mu   sync.Mutex
	fail bool
	sent []sentMessage
}

func (f *fakeNotifier) Send(_ context.Context, contact, message string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{contact: contact, message: message})
	return !f.fail
}

func (f *fakeNotifier) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

type fakeWeather struct {
	forecast domain.Forecast
	err      error
	calls    int
}

func (f *fakeWeather) Forecast(_ context.Context, _, _ float64, _ time.Time) (domain.Forecast, error) {
	f.calls++
	return f.forecast, f.err
}

type fakeMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (f *fakeMetrics) ObserveTransition(operation, result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.results == nil {
		f.results = make(map[string]int)
	}
	f.results[operation+"/"+result]++
}

func (f *fakeMetrics) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[key]
}

type testEnv struct {
	svc      *Service
	store    *memstore.Store
	persons  *fakePersons
	notifier *fakeNotifier
	weather  *fakeWeather
	metrics  *fakeMetrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memstore.NewStore()
	env := &testEnv{
		store:    store,
		persons:  newFakePersons(),
		notifier: &fakeNotifier{},
		weather:  &fakeWeather{forecast: domain.Forecast{TemperatureMin: 12, TemperatureMax: 24, Description: "Sunny"}},
		metrics:  &fakeMetrics{},
	}
	env.svc = NewService(
		store,
		env.persons,
		env.notifier,
		env.weather,
		memstore.NewTxManager(store),
		domain.DefaultBookingPolicy(),
		logger.NewNop(),
		WithTimeProvider(fixedClock{t: now}),
		WithMetrics(env.metrics),
	)
	return env
}

func asClient(id int64) domain.Caller   { return domain.Caller{ID: id, Role: domain.RoleClient} }
func asProvider(id int64) domain.Caller { return domain.Caller{ID: id, Role: domain.RoleProvider} }

func requestFor(clientID, providerID int64, at time.Time) *models.RequestAppointmentRequest {
	return &models.RequestAppointmentRequest{
		ClientID:     clientID,
		ProviderID:   providerID,
		ActivityType: string(domain.ActivityStrength),
		Notes:        "first session",
		ScheduledAt:  at,
	}
}

func (e *testEnv) book(t *testing.T, clientID, providerID int64, at time.Time) *models.AppointmentResponse {
	t.Helper()
	resp, err := e.svc.RequestAppointment(context.Background(), asClient(clientID), requestFor(clientID, providerID, at))
	require.NoError(t, err)
	return resp
}

func TestRequestAppointment_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created := env.book(t, clientC, providerP, now.Add(2*time.Hour))
	assert.Equal(t, "requested", created.Status)
	assert.Equal(t, "first session", created.ClientNotes)

	got, err := env.svc.GetAppointment(ctx, asClient(clientC), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "requested", got.Status)
	assert.Equal(t, now, got.RequestedAt)
	assert.Nil(t, got.ConfirmedAt)
	assert.Nil(t, got.StartedAt)
	assert.Nil(t, got.CompletedAt)
	assert.Nil(t, got.WeatherAdvisory)
	assert.Equal(t, now.Add(3*time.Hour), got.EndsAt)

	msgs := env.notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "+2000000", msgs[0].contact)
	assert.Equal(t, StatusUpdateMessage(&domain.Appointment{ID: created.ID, Status: domain.StatusRequested}), msgs[0].message)
	assert.Equal(t, 1, env.metrics.count("request/success"))
}

func TestRequestAppointment_OverlappingProviderSlot(t *testing.T) {
	env := newTestEnv(t)

	env.book(t, clientC, providerP, now.Add(2*time.Hour))

	_, err := env.svc.RequestAppointment(context.Background(), asClient(clientD),
		requestFor(clientD, providerP, now.Add(2*time.Hour+15*time.Minute)))
	require.ErrorIs(t, err, domain.ErrSchedulingConflict)
	assert.Equal(t, 1, env.metrics.count("request/conflict"))

	// Смежный слот свободен
	env.book(t, clientD, providerP, now.Add(3*time.Hour))
}

func TestRequestAppointment_OverlappingClientSlot(t *testing.T) {
	env := newTestEnv(t)

	env.book(t, clientC, providerP, now.Add(2*time.Hour))

	_, err := env.svc.RequestAppointment(context.Background(), asClient(clientC),
		requestFor(clientC, providerQ, now.Add(2*time.Hour+30*time.Minute)))
	assert.ErrorIs(t, err, domain.ErrSchedulingConflict)
}

func TestRequestAppointment_CapacityExceeded(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < domain.DefaultMaxActiveAppointments; i++ {
		env.book(t, clientC, providerP+int64(i), now.Add(time.Duration(2+2*i)*time.Hour))
	}

	_, err := env.svc.RequestAppointment(context.Background(), asClient(clientC),
		requestFor(clientC, providerP+6, now.Add(48*time.Hour)))
	require.ErrorIs(t, err, domain.ErrCapacityExceeded)

	list, err := env.svc.ListAppointments(context.Background(), asClient(clientC), nil)
	require.NoError(t, err)
	assert.Len(t, list.Appointments, domain.DefaultMaxActiveAppointments)
}

func TestRequestAppointment_CapacityCheckedBeforeOverlap(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < domain.DefaultMaxActiveAppointments; i++ {
		env.book(t, clientC, providerP+int64(i), now.Add(time.Duration(2+2*i)*time.Hour))
	}

	// Пересекается со слотом клиента, но лимит проверяется первым
	_, err := env.svc.RequestAppointment(context.Background(), asClient(clientC),
		requestFor(clientC, providerP+6, now.Add(2*time.Hour)))
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
}

func TestRequestAppointment_CancelledDoNotCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.book(t, clientC, providerP, now.Add(2*time.Hour))
	for i := 1; i < domain.DefaultMaxActiveAppointments; i++ {
		env.book(t, clientC, providerP+int64(i), now.Add(time.Duration(2+2*i)*time.Hour))
	}

	_, err := env.svc.CancelAppointment(ctx, asClient(clientC), first.ID, nil)
	require.NoError(t, err)

	// Освободились и лимит, и слот
	env.book(t, clientC, providerP, now.Add(2*time.Hour))
}

func TestRequestAppointment_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *models.RequestAppointmentRequest)
	}{
		{name: "scheduled in the past", mutate: func(r *models.RequestAppointmentRequest) { r.ScheduledAt = now.Add(-time.Minute) }},
		{name: "scheduled right now", mutate: func(r *models.RequestAppointmentRequest) { r.ScheduledAt = now }},
		{name: "missing schedule", mutate: func(r *models.RequestAppointmentRequest) { r.ScheduledAt = time.Time{} }},
		{name: "blank notes", mutate: func(r *models.RequestAppointmentRequest) { r.Notes = "   " }},
		{name: "notes too long", mutate: func(r *models.RequestAppointmentRequest) { r.Notes = strings.Repeat("я", domain.MaxNotesLength+1) }},
		{name: "unknown activity", mutate: func(r *models.RequestAppointmentRequest) { r.ActivityType = "chess" }},
		{name: "same person", mutate: func(r *models.RequestAppointmentRequest) { r.ProviderID = r.ClientID }},
		{name: "zero client", mutate: func(r *models.RequestAppointmentRequest) { r.ClientID = 0 }},
		{name: "outdoor without location", mutate: func(r *models.RequestAppointmentRequest) { r.ActivityType = string(domain.ActivityOutdoor) }},
		{name: "half a location", mutate: func(r *models.RequestAppointmentRequest) { r.Latitude = ptr.Ptr(10.0) }},
		{name: "location out of range", mutate: func(r *models.RequestAppointmentRequest) {
			r.Latitude, r.Longitude = ptr.Ptr(91.0), ptr.Ptr(0.0)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := requestFor(clientC, providerP, now.Add(2*time.Hour))
			tt.mutate(req)

			_, err := env.svc.RequestAppointment(ctx, asClient(req.ClientID), req)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := env.svc.RequestAppointment(ctx, asClient(clientC), nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, env.notifier.messages())
}

func TestRequestAppointment_ParticipantsAndAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	at := now.Add(2 * time.Hour)

	_, err := env.svc.RequestAppointment(ctx, asClient(999), requestFor(999, providerP, at))
	assert.ErrorIs(t, err, domain.ErrNotFound, "unknown client")

	_, err = env.svc.RequestAppointment(ctx, asClient(clientC), requestFor(clientC, 998, at))
	assert.ErrorIs(t, err, domain.ErrNotFound, "unknown provider")

	_, err = env.svc.RequestAppointment(ctx, asClient(clientC), requestFor(clientC, clientD, at))
	assert.ErrorIs(t, err, domain.ErrRoleMismatch, "provider id refers to a client")

	_, err = env.svc.RequestAppointment(ctx, asProvider(providerQ), requestFor(providerQ, providerP, at))
	assert.ErrorIs(t, err, domain.ErrRoleMismatch, "client id refers to a provider")

	_, err = env.svc.RequestAppointment(ctx, asClient(clientD), requestFor(clientC, providerP, at))
	assert.ErrorIs(t, err, domain.ErrAuthorization, "caller books on behalf of another client")

	_, err = env.svc.RequestAppointment(ctx, asProvider(providerP), requestFor(clientC, providerP, at))
	assert.ErrorIs(t, err, domain.ErrAuthorization, "provider cannot request")

	list, err := env.svc.ListAppointments(ctx, asClient(clientC), nil)
	require.NoError(t, err)
	assert.Empty(t, list.Appointments)
}

func TestRequestAppointment_PersonDirectoryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.persons.err = errors.New("connection refused")

	_, err := env.svc.RequestAppointment(context.Background(), asClient(clientC), requestFor(clientC, providerP, now.Add(2*time.Hour)))
	require.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, 1, env.metrics.count("request/error"))
}

func TestRequestAppointment_NotificationFailureTolerated(t *testing.T) {
	env := newTestEnv(t)
	env.notifier.fail = true

	created := env.book(t, clientC, providerP, now.Add(2*time.Hour))
	assert.Equal(t, "requested", created.Status)
	assert.Len(t, env.notifier.messages(), 1)

	// Без контакта уведомление пропускается
	env.book(t, clientD, providerSilent, now.Add(2*time.Hour))
	assert.Len(t, env.notifier.messages(), 1)
}

func TestRequestAppointment_WeatherAdvisory(t *testing.T) {
	ctx := context.Background()
	outdoor := func(clientID int64) *models.RequestAppointmentRequest {
		req := requestFor(clientID, providerP, now.Add(26*time.Hour))
		req.ActivityType = string(domain.ActivityOutdoor)
		req.Latitude, req.Longitude = ptr.Ptr(52.52), ptr.Ptr(13.40)
		return req
	}

	t.Run("unsuitable forecast warns but does not block", func(t *testing.T) {
		env := newTestEnv(t)
		env.weather.forecast = domain.Forecast{TemperatureMin: -3, TemperatureMax: 2, PrecipitationSum: 12, Description: "Snow"}

		resp, err := env.svc.RequestAppointment(ctx, asClient(clientC), outdoor(clientC))
		require.NoError(t, err)
		require.NotNil(t, resp.WeatherAdvisory)
		assert.False(t, resp.WeatherAdvisory.Suitable)
		assert.Equal(t, "Snow", resp.WeatherAdvisory.Description)
		assert.Equal(t, 1, env.weather.calls)

		// Предупреждение не сохраняется
		got, err := env.svc.GetAppointment(ctx, asClient(clientC), resp.ID)
		require.NoError(t, err)
		assert.Nil(t, got.WeatherAdvisory)
		require.NotNil(t, got.Location)
	})

	t.Run("forecast failure falls back to default", func(t *testing.T) {
		env := newTestEnv(t)
		env.weather.err = errors.New("timeout")

		resp, err := env.svc.RequestAppointment(ctx, asClient(clientC), outdoor(clientC))
		require.NoError(t, err)
		require.NotNil(t, resp.WeatherAdvisory)
		assert.True(t, resp.WeatherAdvisory.Unavailable)
		assert.Equal(t, domain.WeatherUnavailableDescription, resp.WeatherAdvisory.Description)
	})

	t.Run("weather service disabled", func(t *testing.T) {
		store := memstore.NewStore()
		svc := NewService(store, newFakePersons(), &fakeNotifier{}, nil, memstore.NewTxManager(store),
			domain.DefaultBookingPolicy(), logger.NewNop(), WithTimeProvider(fixedClock{t: now}))

		resp, err := svc.RequestAppointment(ctx, asClient(clientC), outdoor(clientC))
		require.NoError(t, err)
		require.NotNil(t, resp.WeatherAdvisory)
		assert.True(t, resp.WeatherAdvisory.Unavailable)
	})

	t.Run("indoor activity is not checked", func(t *testing.T) {
		env := newTestEnv(t)
		req := requestFor(clientC, providerP, now.Add(2*time.Hour))
		req.Latitude, req.Longitude = ptr.Ptr(52.52), ptr.Ptr(13.40)

		resp, err := env.svc.RequestAppointment(ctx, asClient(clientC), req)
		require.NoError(t, err)
		assert.Nil(t, resp.WeatherAdvisory)
		assert.Zero(t, env.weather.calls)
	})
}

func TestRequestAppointment_ConfigurableCapacity(t *testing.T) {
	store := memstore.NewStore()
	policy := domain.DefaultBookingPolicy()
	policy.MaxActiveAppointments = 3
	svc := NewService(store, newFakePersons(), nil, nil, memstore.NewTxManager(store),
		policy, logger.NewNop(), WithTimeProvider(fixedClock{t: now}))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RequestAppointment(ctx, asClient(clientC), requestFor(clientC, providerP+int64(i), now.Add(time.Duration(2+2*i)*time.Hour)))
		require.NoError(t, err)
	}

	_, err := svc.RequestAppointment(ctx, asClient(clientC), requestFor(clientC, providerP+4, now.Add(20*time.Hour)))
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 3, svc.Policy().MaxActiveAppointments)
}
