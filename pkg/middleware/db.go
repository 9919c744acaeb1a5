package middleware

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-hq/venue-portal/pkg/composables"
)

// WithPool makes the database pool available to every request context.
// Services open their own transactions via composables.InTx.
func WithPool(pool *pgxpool.Pool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(composables.WithPool(r.Context(), pool))
			next.ServeHTTP(w, r)
		})
	}
}
