package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/api/middleware"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/enums"
)

// requestActor is the authenticated identity resolved from the token context.
type requestActor struct {
	UserID     uuid.UUID
	SupplierID uuid.UUID
	Role       enums.MemberRole
}

func actorFromRequest(r *http.Request) (requestActor, error) {
	ctx := r.Context()

	userID, err := uuid.Parse(middleware.UserIDFromContext(ctx))
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	supplierRaw := middleware.SupplierIDFromContext(ctx)
	if supplierRaw == "" {
		return requestActor{}, pkgerrors.New(pkgerrors.CodePermissionDenied, "supplier context missing")
	}
	supplierID, err := uuid.Parse(supplierRaw)
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid supplier id")
	}

	role, err := enums.ParseMemberRole(middleware.RoleFromContext(ctx))
	if err != nil {
		return requestActor{}, pkgerrors.Wrap(pkgerrors.CodePermissionDenied, err, "unknown role")
	}

	return requestActor{UserID: userID, SupplierID: supplierID, Role: role}, nil
}
