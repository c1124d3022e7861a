package middleware

import (
	"net/http"

	"github.com/velora-market/velora-backend/api/responses"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
)

// SupplierContext rejects requests whose token carries no supplier binding.
func SupplierContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if SupplierIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
