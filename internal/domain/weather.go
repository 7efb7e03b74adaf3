package domain

import (
	"fmt"
	"time"
)

// Forecast дневной прогноз погоды для точки
type Forecast struct {
	TemperatureMax   float64
	TemperatureMin   float64
	PrecipitationSum float64
	Description      string
}

// DefaultForecast прогноз, используемый когда погодный сервис отключен или недоступен
func DefaultForecast() Forecast {
	return Forecast{
		TemperatureMax:   defaultForecastMaxTemperature,
		TemperatureMin:   defaultForecastMinTemperature,
		PrecipitationSum: defaultForecastPrecipitationSum,
		Description:      WeatherUnavailableDescription,
	}
}

// WeatherPolicy пороги пригодности погоды для занятий на улице
type WeatherPolicy struct {
	MinTemperature   float64
	MaxTemperature   float64
	MaxPrecipitation float64
}

// DefaultWeatherPolicy returns min>5, max<35, precipitation<5
func DefaultWeatherPolicy() WeatherPolicy {
	return WeatherPolicy{
		MinTemperature:   DefaultOutdoorMinTemperature,
		MaxTemperature:   DefaultOutdoorMaxTemperature,
		MaxPrecipitation: DefaultOutdoorMaxPrecipitation,
	}
}

// IsSuitableForOutdoor reports whether the forecast satisfies the policy thresholds
func (f Forecast) IsSuitableForOutdoor(p WeatherPolicy) bool {
	return f.TemperatureMin > p.MinTemperature &&
		f.TemperatureMax < p.MaxTemperature &&
		f.PrecipitationSum < p.MaxPrecipitation
}

// WeatherAdvisory предупреждение о погоде для записи на улице. Никогда не блокирует создание.
type WeatherAdvisory struct {
	Date        time.Time
	Forecast    Forecast
	Suitable    bool
	Unavailable bool // Прогноз не получен, использован прогноз по умолчанию
	Message     string
}

// NewWeatherAdvisory builds an advisory for the given forecast
func NewWeatherAdvisory(date time.Time, f Forecast, p WeatherPolicy, unavailable bool) *WeatherAdvisory {
	adv := &WeatherAdvisory{
		Date:        date,
		Forecast:    f,
		Suitable:    f.IsSuitableForOutdoor(p),
		Unavailable: unavailable,
	}

	switch {
	case unavailable:
		adv.Message = "Weather forecast is unavailable, check conditions before the session"
	case adv.Suitable:
		adv.Message = fmt.Sprintf("Weather looks suitable for outdoor training: %s", f.Description)
	default:
		adv.Message = fmt.Sprintf(
			"Weather may be unsuitable for outdoor training: %s (min %.1f, max %.1f, precipitation %.1f)",
			f.Description, f.TemperatureMin, f.TemperatureMax, f.PrecipitationSum)
	}
	return adv
}
