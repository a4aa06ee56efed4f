package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"

	"github.com/mark47B/rostersync/internal/infra/transport/rest/handlers"
)

// RequestValidator проверяет запросы по OpenAPI-документу.
// Пути вне документа (например /metrics) пропускаются как есть.
func RequestValidator(swagger *openapi3.T) (func(http.Handler) http.Handler, error) {
	// сервер из документа не должен влиять на матчинг хоста
	swagger.Servers = nil

	router, err := gorillamux.NewRouter(swagger)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				if errors.Is(err, routers.ErrMethodNotAllowed) {
					handlers.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options: &openapi3filter.Options{
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
					MultiError:         false,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				handlers.WriteError(w, http.StatusBadRequest, validationMessage(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func validationMessage(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) && reqErr.Err != nil {
		switch {
		case reqErr.RequestBody != nil:
			return "Invalid payload: " + reqErr.Err.Error()
		case reqErr.Parameter != nil:
			return fmt.Sprintf("invalid parameter %s: %v", reqErr.Parameter.Name, reqErr.Err)
		}
	}
	return err.Error()
}
