package weatherservice

import (
	"strings"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ForecastResponse ответ погодного сервиса
type ForecastResponse struct {
	TemperatureMax     *float64 `json:"temperature_max"`
	TemperatureMin     *float64 `json:"temperature_min"`
	PrecipitationSum   *float64 `json:"precipitation_sum"`
	WeatherDescription string   `json:"weather_description"`
}

// ToDomain преобразует ответ в доменный прогноз
// Отсутствующие числовые поля считаются некорректным ответом
func (r ForecastResponse) ToDomain() (domain.Forecast, bool) {
	if r.TemperatureMax == nil || r.TemperatureMin == nil || r.PrecipitationSum == nil {
		return domain.Forecast{}, false
	}

	description := strings.TrimSpace(r.WeatherDescription)
	if description == "" {
		description = "Unknown"
	}

	return domain.Forecast{
		TemperatureMax:   *r.TemperatureMax,
		TemperatureMin:   *r.TemperatureMin,
		PrecipitationSum: *r.PrecipitationSum,
		Description:      description,
	}, true
}

// cachedForecast формат хранения прогноза в кэше
type cachedForecast struct {
	TemperatureMax   float64 `json:"temperature_max"`
	TemperatureMin   float64 `json:"temperature_min"`
	PrecipitationSum float64 `json:"precipitation_sum"`
	Description      string  `json:"description"`
}

func toCached(f domain.Forecast) cachedForecast {
	return cachedForecast{
		TemperatureMax:   f.TemperatureMax,
		TemperatureMin:   f.TemperatureMin,
		PrecipitationSum: f.PrecipitationSum,
		Description:      f.Description,
	}
}

func (c cachedForecast) toDomain() domain.Forecast {
	return domain.Forecast{
		TemperatureMax:   c.TemperatureMax,
		TemperatureMin:   c.TemperatureMin,
		PrecipitationSum: c.PrecipitationSum,
		Description:      c.Description,
	}
}
