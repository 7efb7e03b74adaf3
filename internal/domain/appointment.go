package domain

import (
	"time"
)

// AppointmentStatus represents the lifecycle status of an appointment
type AppointmentStatus string

const (
	StatusRequested  AppointmentStatus = "requested"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
)

// IsValid returns true if the status is one of the known statuses
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusRequested, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for statuses that allow no further transitions
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsActive returns true if the status occupies capacity and a slot
func (s AppointmentStatus) IsActive() bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// ActivityType категория занятия, выбирается при создании записи
type ActivityType string

const (
	ActivityAerobic        ActivityType = "aerobic"
	ActivityCardio         ActivityType = "cardio"
	ActivityStrength       ActivityType = "strength_training"
	ActivityFlexibility    ActivityType = "flexibility_and_stretching"
	ActivityBalance        ActivityType = "balance_training"
	ActivityCore           ActivityType = "core_training"
	ActivityMuscleBuilding ActivityType = "muscle_building"
	ActivityWeightLoss     ActivityType = "weight_loss"
	ActivityOutdoor        ActivityType = "outdoor_training"
	ActivityGeneralFitness ActivityType = "general_fitness"
)

// ActivityTypes список всех допустимых типов занятий
var ActivityTypes = []ActivityType{
	ActivityAerobic,
	ActivityCardio,
	ActivityStrength,
	ActivityFlexibility,
	ActivityBalance,
	ActivityCore,
	ActivityMuscleBuilding,
	ActivityWeightLoss,
	ActivityOutdoor,
	ActivityGeneralFitness,
}

// IsValid returns true if the activity type is known
func (a ActivityType) IsValid() bool {
	for _, known := range ActivityTypes {
		if a == known {
			return true
		}
	}
	return false
}

// IsOutdoor returns true if the activity requires a location and a weather check
func (a ActivityType) IsOutdoor() bool {
	return a == ActivityOutdoor
}

// Location координаты места проведения занятия
type Location struct {
	Latitude  float64
	Longitude float64
}

// IsValid returns true if coordinates are within WGS84 bounds
func (l Location) IsValid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 &&
		l.Longitude >= -180 && l.Longitude <= 180
}

// Appointment represents a one-hour session between a client and a provider
type Appointment struct {
	ID           int64
	ClientID     int64
	ProviderID   int64
	Status       AppointmentStatus
	ActivityType ActivityType
	ScheduledAt  time.Time

	ClientNotes   string
	ProviderNotes *string
	Location      *Location

	RequestedAt time.Time
	ConfirmedAt *time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time

	CancellationReason *string
	CancelledAt        *time.Time

	UpdatedAt time.Time

	// WeatherAdvisory не сохраняется: заполняется только в ответе на создание записи
	WeatherAdvisory *WeatherAdvisory
}

// Slot returns the half-open interval occupied by the appointment
func (a *Appointment) Slot() Slot {
	return NewSlot(a.ScheduledAt)
}

// IsActive returns true if the appointment occupies capacity and its slot
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// IsTerminal returns true if the appointment is completed or cancelled
func (a *Appointment) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// Clone returns a deep copy of the appointment
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}

	c := *a
	c.ProviderNotes = cloneString(a.ProviderNotes)
	c.CancellationReason = cloneString(a.CancellationReason)
	c.ConfirmedAt = cloneTime(a.ConfirmedAt)
	c.StartedAt = cloneTime(a.StartedAt)
	c.CompletedAt = cloneTime(a.CompletedAt)
	c.CancelledAt = cloneTime(a.CancelledAt)
	if a.Location != nil {
		loc := *a.Location
		c.Location = &loc
	}
	if a.WeatherAdvisory != nil {
		adv := *a.WeatherAdvisory
		c.WeatherAdvisory = &adv
	}
	return &c
}

// ListOrder порядок выдачи записей
type ListOrder int

const (
	// OrderBySchedule scheduled_at, затем id
	OrderBySchedule ListOrder = iota
	// OrderByID id по возрастанию, для постраничного обхода по курсору AfterID
	OrderByID
)

// AppointmentsFilter фильтр выборки записей
type AppointmentsFilter struct {
	ClientID        *int64              // Только записи клиента
	ProviderID      *int64              // Только записи специалиста
	Statuses        []AppointmentStatus // Пусто - любые статусы
	RequestedBefore *time.Time          // Только записи, созданные раньше указанного момента
	AfterID         int64               // Только записи с id больше указанного, 0 - с начала
	Order           ListOrder
	Limit           int // 0 - без ограничения
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
