package weatherservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const forecastPath = "/api/v1/weather/forecast"

// Client клиент погодного сервиса
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      ForecastCache
	cacheTTL   time.Duration
	log        Logger
}

// Option настройка клиента
type Option func(*Client)

// WithCache включает кэширование прогнозов
func WithCache(cache ForecastCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cache
		c.cacheTTL = ttl
	}
}

// WithRateLimit ограничивает частоту запросов к сервису
// rps <= 0 снимает ограничение
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewClient создает новый экземпляр клиента погодного сервиса
func NewClient(baseURL string, timeout time.Duration, log Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Forecast получает дневной прогноз для точки на дату
// Ошибки кэша не прерывают запрос, а только логируются
func (c *Client) Forecast(ctx context.Context, latitude, longitude float64, date time.Time) (domain.Forecast, error) {
	key := cacheKey(latitude, longitude, date)

	if c.cache != nil {
		forecast, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			c.log.Warn("WeatherService: cache get %s failed: %v", key, err)
		}
		if ok {
			return forecast, nil
		}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return domain.Forecast{}, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	forecast, err := c.fetch(ctx, latitude, longitude, date)
	if err != nil {
		return domain.Forecast{}, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, forecast, c.cacheTTL); err != nil {
			c.log.Warn("WeatherService: cache set %s failed: %v", key, err)
		}
	}

	return forecast, nil
}

func (c *Client) fetch(ctx context.Context, latitude, longitude float64, date time.Time) (domain.Forecast, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	query.Set("date", date.UTC().Format(domain.DateFormat))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+forecastPath+"?"+query.Encode(), nil)
	if err != nil {
		return domain.Forecast{}, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("WeatherService: request for %s failed: %v", query.Encode(), err)
		return domain.Forecast{}, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Forecast{}, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var payload ForecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.Forecast{}, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	forecast, ok := payload.ToDomain()
	if !ok {
		return domain.Forecast{}, fmt.Errorf("%w: forecast fields are missing", ErrInvalidResponse)
	}

	return forecast, nil
}

// cacheKey координаты округляются до ~100м, чтобы соседние точки попадали в один ключ
func cacheKey(latitude, longitude float64, date time.Time) string {
	return fmt.Sprintf("weather:%.3f:%.3f:%s", latitude, longitude, date.UTC().Format(domain.DateFormat))
}
