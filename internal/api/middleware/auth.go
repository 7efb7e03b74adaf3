package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"

	msgMissingCredentials = "требуется аутентификация"
	msgInvalidToken       = "некорректный токен"
	msgInvalidUserID      = "некорректный ID пользователя"
	msgInvalidRole        = "некорректная роль пользователя"
)

var (
	errMissingCredentials = errors.New("missing credentials")
	errInvalidToken       = errors.New("invalid token")
	errInvalidUserID      = errors.New("invalid user id")
	errInvalidRole        = errors.New("invalid role")
)

type callerKey struct{}

// Claims полезная нагрузка токена: sub - ID участника, role - client или provider
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig настройки аутентификации
type AuthConfig struct {
	JWTSecret string // Пусто - инициатор берется из заголовков X-User-ID и X-User-Role
	Issuer    string
}

// Auth определяет инициатора запроса и кладет его в контекст
func Auth(cfg AuthConfig, logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				caller domain.Caller
				err    error
			)
			if cfg.JWTSecret != "" {
				caller, err = callerFromToken(r, cfg)
			} else {
				caller, err = callerFromHeaders(r)
			}

			if err != nil {
				logger.Warn("%s %s - Authentication failed: %v", r.Method, r.URL.Path, err)
				handlers.RespondUnauthorized(w, authMessage(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithCaller(r.Context(), caller)))
		})
	}
}

// WithCaller кладет инициатора в контекст
func WithCaller(ctx context.Context, caller domain.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// GetCaller возвращает инициатора запроса из контекста
func GetCaller(ctx context.Context) (domain.Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(domain.Caller)
	return caller, ok
}

func callerFromHeaders(r *http.Request) (domain.Caller, error) {
	rawID := strings.TrimSpace(r.Header.Get(HeaderUserID))
	rawRole := strings.TrimSpace(r.Header.Get(HeaderUserRole))
	if rawID == "" || rawRole == "" {
		return domain.Caller{}, errMissingCredentials
	}
	return parseCaller(rawID, rawRole)
}

func callerFromToken(r *http.Request, cfg AuthConfig) (domain.Caller, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return domain.Caller{}, errMissingCredentials
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return domain.Caller{}, errInvalidToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(strings.TrimSpace(parts[1]), &claims, func(*jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return domain.Caller{}, errInvalidToken
	}

	return parseCaller(claims.Subject, claims.Role)
}

func parseCaller(rawID, rawRole string) (domain.Caller, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return domain.Caller{}, errInvalidUserID
	}

	role := domain.Role(strings.ToLower(rawRole))
	if !role.IsValid() {
		return domain.Caller{}, errInvalidRole
	}

	return domain.Caller{ID: id, Role: role}, nil
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, errInvalidToken):
		return msgInvalidToken
	case errors.Is(err, errInvalidUserID):
		return msgInvalidUserID
	case errors.Is(err, errInvalidRole):
		return msgInvalidRole
	default:
		return msgMissingCredentials
	}
}
