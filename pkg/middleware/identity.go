package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/campus-hq/venue-portal/pkg/composables"
	"github.com/campus-hq/venue-portal/pkg/configuration"
	"github.com/campus-hq/venue-portal/pkg/httpapi"
)

// RequireIdentity reads the tenant and user id headers injected by the
// fronting auth proxy and installs them in the request context. Requests
// without a valid tenant are rejected before reaching any controller.
func RequireIdentity(conf *configuration.Configuration) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if conf.Prometheus.Enabled && r.URL.Path == conf.Prometheus.Path {
				next.ServeHTTP(w, r)
				return
			}
			tenantID, err := uuid.Parse(r.Header.Get(conf.TenantIDHeader))
			if err != nil || tenantID == uuid.Nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "IDENTITY_MISSING_TENANT", "tenant header is missing or invalid", nil)
				return
			}
			ctx := composables.WithTenantID(r.Context(), tenantID)

			if userID, err := uuid.Parse(r.Header.Get(conf.UserIDHeader)); err == nil && userID != uuid.Nil {
				ctx = composables.WithUserID(ctx, userID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
