package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mark47B/rostersync/internal/infra/transport/rest/handlers"
)

type ContextKey string

const ClaimsContextKey ContextKey = "claims"

type AuthConfig struct {
	// APIToken: статический токен расширения/букмарклета
	APIToken string
	// JWTSecret: HS256 секрет для токенов дашборда
	JWTSecret string
	// Public: пути без авторизации
	Public []string
}

func (c AuthConfig) enabled() bool {
	return c.APIToken != "" || c.JWTSecret != ""
}

// Auth пропускает запрос с валидным bearer-токеном: статическим или JWT.
// Без настроенных секретов авторизация выключена.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	public := make(map[string]struct{}, len(cfg.Public))
	for _, p := range cfg.Public {
		public[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.enabled() || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := public[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := bearerToken(r)
			if tokenStr == "" {
				handlers.WriteError(w, http.StatusUnauthorized, "Missing auth token")
				return
			}

			if cfg.APIToken != "" && subtle.ConstantTimeCompare([]byte(tokenStr), []byte(cfg.APIToken)) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			if cfg.JWTSecret == "" {
				handlers.WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}

			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
				return []byte(cfg.JWTSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				handlers.WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				handlers.WriteError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken: Authorization: Bearer <t>, иначе заголовок apikey
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if t, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(t)
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("apikey"))
}
