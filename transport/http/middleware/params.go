package middleware

import (
	"net/http"
	"roombook/shared/validator"
	"roombook/transport/http/response"

	"github.com/go-chi/chi/v5"
)

// UUIDParam answers with notFound when the named route parameter is not a
// UUID, so malformed ids never reach Postgres.
func UUIDParam(name string, notFound error) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := validator.ValidateVar(chi.URLParam(r, name), "required,uuid"); err != nil {
				response.WithError(w, notFound)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
