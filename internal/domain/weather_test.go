package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForecast_IsSuitableForOutdoor(t *testing.T) {
	policy := DefaultWeatherPolicy()

	tests := []struct {
		name     string
		forecast Forecast
		want     bool
	}{
		{name: "mild", forecast: Forecast{TemperatureMin: 10, TemperatureMax: 22, PrecipitationSum: 0}, want: true},
		{name: "too cold", forecast: Forecast{TemperatureMin: 5, TemperatureMax: 12}, want: false},
		{name: "too hot", forecast: Forecast{TemperatureMin: 20, TemperatureMax: 35}, want: false},
		{name: "rainy", forecast: Forecast{TemperatureMin: 10, TemperatureMax: 20, PrecipitationSum: 5}, want: false},
		{name: "default forecast", forecast: DefaultForecast(), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.forecast.IsSuitableForOutdoor(policy))
		})
	}
}

func TestNewWeatherAdvisory(t *testing.T) {
	date := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	bad := NewWeatherAdvisory(date, Forecast{TemperatureMin: 1, TemperatureMax: 4, Description: "Snow"}, DefaultWeatherPolicy(), false)
	require.NotNil(t, bad)
	assert.False(t, bad.Suitable)
	assert.Contains(t, bad.Message, "unsuitable")

	unavailable := NewWeatherAdvisory(date, DefaultForecast(), DefaultWeatherPolicy(), true)
	assert.True(t, unavailable.Unavailable)
	assert.Equal(t, WeatherUnavailableDescription, unavailable.Forecast.Description)
}

func TestBookingPolicy_Validate(t *testing.T) {
	p := DefaultBookingPolicy()
	require.NoError(t, p.Validate())
	assert.True(t, p.HasCapacity(4))
	assert.False(t, p.HasCapacity(5))

	p.MaxActiveAppointments = 0
	assert.ErrorIs(t, p.Validate(), ErrValidation)

	p = DefaultBookingPolicy()
	p.Weather.MinTemperature = 40
	assert.ErrorIs(t, p.Validate(), ErrValidation)
}
