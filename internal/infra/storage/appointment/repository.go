package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const (
	tableName = "appointments"

	// pgExclusionViolation код ошибки postgres при нарушении EXCLUDE ограничения
	pgExclusionViolation = "23P01"
)

var columns = []string{
	"id",
	"client_id",
	"provider_id",
	"status",
	"activity_type",
	"scheduled_at",
	"client_notes",
	"provider_notes",
	"latitude",
	"longitude",
	"requested_at",
	"confirmed_at",
	"started_at",
	"completed_at",
	"cancelled_at",
	"cancellation_reason",
	"updated_at",
}

// Repository репозиторий для работы с записями в postgres
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись
// Пересечение с активной записью клиента или специалиста отсекается EXCLUDE ограничением
// и возвращается как ErrSlotTaken
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	var lat, lon sql.NullFloat64
	if appt.Location != nil {
		lat = sql.NullFloat64{Float64: appt.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: appt.Location.Longitude, Valid: true}
	}

	query, args, err := psqlbuilder.Insert(tableName).
		Columns(
			"client_id",
			"provider_id",
			"status",
			"activity_type",
			"scheduled_at",
			"client_notes",
			"latitude",
			"longitude",
			"requested_at",
			"updated_at",
		).
		Values(
			appt.ClientID,
			appt.ProviderID,
			appt.Status,
			appt.ActivityType,
			appt.ScheduledAt,
			appt.ClientNotes,
			lat,
			lon,
			appt.RequestedAt,
			appt.RequestedAt,
		).
		Suffix("RETURNING id, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	created := appt.Clone()
	err = executor.QueryRowContext(ctx, query, args...).Scan(&created.ID, &created.UpdatedAt)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, fmt.Errorf("%w: client=%d provider=%d at %s", ErrSlotTaken,
				appt.ClientID, appt.ProviderID, appt.ScheduledAt.UTC().Format("2006-01-02 15:04"))
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return created, nil
}

// GetByID получает запись по ID
// Внутри транзакции строка блокируется (FOR UPDATE) до конца транзакции
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(tableName).
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %w", ErrScanRow, err)
	}

	return appt, nil
}

// List получает записи по фильтру в порядке filter.Order
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := listQuery(filter, dbmetrics.IsInTransaction(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	appointments := make([]*domain.Appointment, 0)
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan appointment: %w", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows iteration: %w", ErrScanRow, err)
	}

	return appointments, nil
}

// UpdateTransition сохраняет результат перехода статуса
// Обновление применяется только если в БД запись всё ещё в статусе from,
// иначе возвращается ErrStatusChanged
func (r *Repository) UpdateTransition(ctx context.Context, appt *domain.Appointment, from domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableName).
		Set("status", appt.Status).
		Set("provider_notes", appt.ProviderNotes).
		Set("confirmed_at", appt.ConfirmedAt).
		Set("started_at", appt.StartedAt).
		Set("completed_at", appt.CompletedAt).
		Set("cancelled_at", appt.CancelledAt).
		Set("cancellation_reason", appt.CancellationReason).
		Set("updated_at", appt.UpdatedAt).
		Where(squirrel.Eq{"id": appt.ID, "status": from}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateTransition - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateTransition - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateTransition - get rows affected: %w", ErrExecQuery, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: appointment id=%d is no longer %s", ErrStatusChanged, appt.ID, from)
	}

	return nil
}

// LockActors берет транзакционные advisory-блокировки на клиента и специалиста
// Ключи блокируются в отсортированном порядке, чтобы параллельные транзакции не взаимоблокировались
func (r *Repository) LockActors(ctx context.Context, clientID, providerID int64) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return fmt.Errorf("%w: LockActors", ErrTransaction)
	}

	for _, key := range lockKeys(clientID, providerID) {
		if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", key); err != nil {
			return fmt.Errorf("%w: LockActors - lock %s: %w", ErrExecQuery, key, err)
		}
	}

	return nil
}

func listQuery(filter domain.AppointmentsFilter, forUpdate bool) (string, []interface{}, error) {
	builder := psqlbuilder.Select(columns...).
		From(tableName)

	switch filter.Order {
	case domain.OrderByID:
		builder = builder.OrderBy("id ASC")
	default:
		builder = builder.OrderBy("scheduled_at ASC", "id ASC")
	}

	if filter.ClientID != nil {
		builder = builder.Where(squirrel.Eq{"client_id": *filter.ClientID})
	}
	if filter.ProviderID != nil {
		builder = builder.Where(squirrel.Eq{"provider_id": *filter.ProviderID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		builder = builder.Where(squirrel.Eq{"status": statuses})
	}
	if filter.RequestedBefore != nil {
		builder = builder.Where(squirrel.Lt{"requested_at": *filter.RequestedBefore})
	}
	if filter.AfterID > 0 {
		builder = builder.Where(squirrel.Gt{"id": filter.AfterID})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	return builder.ToSql()
}

func lockKeys(clientID, providerID int64) []string {
	keys := []string{
		fmt.Sprintf("appointments:client:%d", clientID),
		fmt.Sprintf("appointments:provider:%d", providerID),
	}
	sort.Strings(keys)
	return keys
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appt               domain.Appointment
		providerNotes      sql.NullString
		cancellationReason sql.NullString
		lat, lon           sql.NullFloat64
		confirmedAt        sql.NullTime
		startedAt          sql.NullTime
		completedAt        sql.NullTime
		cancelledAt        sql.NullTime
	)

	err := row.Scan(
		&appt.ID,
		&appt.ClientID,
		&appt.ProviderID,
		&appt.Status,
		&appt.ActivityType,
		&appt.ScheduledAt,
		&appt.ClientNotes,
		&providerNotes,
		&lat,
		&lon,
		&appt.RequestedAt,
		&confirmedAt,
		&startedAt,
		&completedAt,
		&cancelledAt,
		&cancellationReason,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	appt.ProviderNotes = nullString(providerNotes)
	appt.CancellationReason = nullString(cancellationReason)
	appt.ConfirmedAt = nullTime(confirmedAt)
	appt.StartedAt = nullTime(startedAt)
	appt.CompletedAt = nullTime(completedAt)
	appt.CancelledAt = nullTime(cancelledAt)
	if lat.Valid && lon.Valid {
		appt.Location = &domain.Location{Latitude: lat.Float64, Longitude: lon.Float64}
	}

	return &appt, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pgExclusionViolation
}
