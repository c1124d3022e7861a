package controllers

import (
	"net/http"

	"github.com/velora-market/velora-backend/api/responses"
	"github.com/velora-market/velora-backend/api/validators"
	"github.com/velora-market/velora-backend/internal/suppliers"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
)

type updateSupplierProfileRequest struct {
	BusinessName *string `json:"businessName" validate:"omitempty,min=2,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=4000"`
	Phone        *string `json:"phone" validate:"omitempty,max=40"`
	City         *string `json:"city" validate:"omitempty,max=120"`
}

type acceptingBookingsRequest struct {
	AcceptingBookings *bool `json:"acceptingBookings" validate:"required"`
}

type accountStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// GetSupplierProfile returns the authenticated supplier's profile.
func GetSupplierProfile(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.GetByID(r.Context(), actor.SupplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// UpdateSupplierProfile patches the mutable profile fields.
func UpdateSupplierProfile(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body updateSupplierProfileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := suppliers.UpdateProfileInput{
			BusinessName: body.BusinessName,
			Description:  body.Description,
			Phone:        body.Phone,
			City:         body.City,
		}
		profile, err := svc.UpdateProfile(r.Context(), supplierActor(actor), actor.SupplierID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// SetAcceptingBookings toggles whether new booking requests are accepted.
func SetAcceptingBookings(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body acceptingBookingsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := svc.SetAcceptingBookings(r.Context(), supplierActor(actor), actor.SupplierID, *body.AcceptingBookings)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// SetSupplierAccountStatus moves the account through the verification pipeline.
func SetSupplierAccountStatus(svc suppliers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body accountStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseAccountStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid account status"))
			return
		}
		profile, err := svc.SetAccountStatus(r.Context(), supplierActor(actor), actor.SupplierID, suppliers.StatusInput{
			Status: status,
			Reason: body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

func supplierActor(actor requestActor) suppliers.Actor {
	return suppliers.Actor{
		UserID:     actor.UserID,
		SupplierID: actor.SupplierID,
		Role:       actor.Role,
	}
}
