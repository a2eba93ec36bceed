package http

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/legacy"
)

//go:embed openapi.yaml
var openAPISpec []byte

// LoadSpec parses and validates the embedded API description.
func LoadSpec(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// WithRequestValidation rejects requests that do not match doc before they
// reach a handler. Requests for paths doc does not describe pass through.
func WithRequestValidation(doc *openapi3.T) Option {
	return func(s *Server) {
		s.Spec = doc
	}
}

// GetSpec handles the GET /openapi.yaml request.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Write(openAPISpec)
}

func requestValidator(doc *openapi3.T, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, err
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, params, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Only JSON bodies are checked; uploads are read by the handler.
			isJSON := strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: params,
				Route:      route,
				Options: &openapi3filter.Options{
					ExcludeRequestBody: !isJSON,
					AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
				},
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Debug("Request rejected", "path", r.URL.Path, "error", err)
				http.Error(w, validationMessage(err, route), http.StatusBadRequest)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func validationMessage(err error, route *routers.Route) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("%s %s: %s", route.Method, route.Path, reqErr.Error())
	}
	return errInvalidBody.Error()
}
