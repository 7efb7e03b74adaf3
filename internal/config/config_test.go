package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090

[database]
host = "db"
dbname = "appts"

[booking]
max_active_appointments = 3

[notifications]
driver = "kafka"
sms_token = "file-token"
kafka_brokers = ["kafka-1:9092", "kafka-2:9092"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.HTTPPort)
	assert.Equal(t, 30, cfg.Server.ShutdownTimeout, "default kept")
	assert.Equal(t, "host=db port=5432 user=postgres password= dbname=appts sslmode=disable", cfg.Database.DSN())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Notifications.KafkaBrokers)
	assert.Equal(t, "appointment.notifications", cfg.Notifications.KafkaTopic)
	assert.Equal(t, "file-token", cfg.Notifications.SMSToken)
	assert.Equal(t, 600, cfg.RateLimit.IdleTTL, "default kept")

	policy := cfg.Policy()
	assert.Equal(t, 3, policy.MaxActiveAppointments)
	assert.Equal(t, domain.DefaultWeatherPolicy(), policy.Weather)
	assert.Equal(t, 24*time.Hour, policy.StaleRequestAge)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
[server]
http_port = 9090
`)
	t.Setenv("APPT_SERVER_HTTP_PORT", "7070")
	t.Setenv("APPT_DATABASE_DRIVER", "memory")
	t.Setenv("APPT_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("APPT_NOTIFICATIONS_DRIVER", "kafka")
	t.Setenv("APPT_NOTIFICATIONS_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("APPT_NOTIFICATIONS_SMS_TOKEN", "hook-token")
	t.Setenv("APPT_BOOKING_MAX_ACTIVE_APPOINTMENTS", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.HTTPPort)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Notifications.KafkaBrokers)
	assert.Equal(t, "hook-token", cfg.Notifications.SMSToken)
	assert.Equal(t, 7, cfg.Policy().MaxActiveAppointments)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrLoad)

	_, err = Load(writeConfig(t, `[server`))
	assert.ErrorIs(t, err, ErrLoad)

	_, err = Load(writeConfig(t, `
[booking]
max_active_appointments = 0
`))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "bad port", mutate: func(c *Config) { c.Server.HTTPPort = 0 }},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }},
		{name: "weather without url", mutate: func(c *Config) { c.Weather.Enabled = true }},
		{name: "sms without webhook", mutate: func(c *Config) { c.Notifications.Driver = "sms" }},
		{name: "kafka without brokers", mutate: func(c *Config) { c.Notifications.Driver = "kafka" }},
		{name: "unknown notifier", mutate: func(c *Config) { c.Notifications.Driver = "pigeon" }},
		{name: "sample ratio", mutate: func(c *Config) { c.Tracing.SampleRatio = 2 }},
		{name: "inverted weather thresholds", mutate: func(c *Config) { c.Booking.OutdoorMinTemperature = 50 }},
		{name: "rate limit burst", mutate: func(c *Config) { c.RateLimit.Enabled = true; c.RateLimit.Burst = 0 }},
		{name: "reminders interval", mutate: func(c *Config) { c.Reminders.Enabled = true; c.Reminders.Interval = 0 }},
	}

	require.NoError(t, Default().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}
