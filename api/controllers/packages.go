package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velora-market/velora-backend/api/responses"
	"github.com/velora-market/velora-backend/api/validators"
	"github.com/velora-market/velora-backend/internal/packages"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/types"
)

type createPackageRequest struct {
	Name           string                      `json:"name" validate:"required,min=2,max=200"`
	Description    *string                     `json:"description" validate:"omitempty,max=4000"`
	Price          decimal.Decimal             `json:"price" validate:"required"`
	Currency       *string                     `json:"currency" validate:"omitempty,len=3"`
	DurationHours  *int                        `json:"durationHours" validate:"omitempty,min=1,max=168"`
	Includes       []string                    `json:"includes" validate:"omitempty,dive,max=500"`
	Customizations types.PackageCustomizations `json:"customizations"`
	Photos         []string                    `json:"photos" validate:"omitempty,dive,url"`
}

type updatePackageRequest struct {
	Name           *string                      `json:"name" validate:"omitempty,min=2,max=200"`
	Description    *string                      `json:"description" validate:"omitempty,max=4000"`
	Price          *decimal.Decimal             `json:"price"`
	DurationHours  *int                         `json:"durationHours" validate:"omitempty,min=1,max=168"`
	Includes       *[]string                    `json:"includes"`
	Customizations *types.PackageCustomizations `json:"customizations"`
	Photos         *[]string                    `json:"photos"`
	IsActive       *bool                        `json:"isActive"`
}

// CreatePackage adds a package to the supplier's catalogue. The category is
// always inherited from the supplier.
func CreatePackage(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body createPackageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := packages.CreatePackageInput{
			Name:           body.Name,
			Description:    body.Description,
			Price:          body.Price,
			DurationHours:  body.DurationHours,
			Includes:       body.Includes,
			Customizations: body.Customizations,
			Photos:         body.Photos,
		}
		if body.Currency != nil {
			currency, err := enums.ParseCurrency(*body.Currency)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
				return
			}
			input.Currency = &currency
		}
		created, err := svc.Create(r.Context(), packageActor(actor), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// UpdatePackage patches the mutable package fields.
func UpdatePackage(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		packageID, err := uuid.Parse(chi.URLParam(r, "packageID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid package id"))
			return
		}
		var body updatePackageRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), packageActor(actor), packageID, packages.UpdatePackageInput{
			Name:           body.Name,
			Description:    body.Description,
			Price:          body.Price,
			DurationHours:  body.DurationHours,
			Includes:       body.Includes,
			Customizations: body.Customizations,
			Photos:         body.Photos,
			IsActive:       body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// ArchivePackage deactivates a package without deleting its booking history.
func ArchivePackage(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		packageID, err := uuid.Parse(chi.URLParam(r, "packageID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid package id"))
			return
		}
		if err := svc.Archive(r.Context(), packageActor(actor), packageID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"packageId": packageID.String()})
	}
}

// GetPackage returns a single package owned by the supplier.
func GetPackage(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		packageID, err := uuid.Parse(chi.URLParam(r, "packageID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid package id"))
			return
		}
		pkg, err := svc.GetByID(r.Context(), packageActor(actor), packageID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pkg)
	}
}

// ListPackages returns the supplier's catalogue.
func ListPackages(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		includeInactive := false
		if raw := strings.TrimSpace(r.URL.Query().Get("includeInactive")); raw != "" {
			value, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid includeInactive value"))
				return
			}
			includeInactive = value
		}
		items, err := svc.List(r.Context(), packageActor(actor), includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func packageActor(actor requestActor) packages.Actor {
	return packages.Actor{
		UserID:     actor.UserID,
		SupplierID: actor.SupplierID,
		Role:       actor.Role,
	}
}
