package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/api/responses"
	"github.com/velora-market/velora-backend/api/validators"
	"github.com/velora-market/velora-backend/internal/availability"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
)

type createBlockedDateRequest struct {
	Date   string  `json:"date" validate:"required"`
	Type   string  `json:"type" validate:"required"`
	Reason *string `json:"reason" validate:"omitempty,max=500"`
}

// ListAvailability returns the supplier's calendar entries for a date range.
func ListAvailability(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if from.IsZero() {
			from = time.Now().UTC().Truncate(24 * time.Hour)
		}
		if to.IsZero() {
			to = from.AddDate(0, 3, 0)
		}
		entries, err := svc.List(r.Context(), actor.SupplierID, from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

// CreateBlockedDate adds a manual availability block.
func CreateBlockedDate(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body createBlockedDateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "date must be YYYY-MM-DD"))
			return
		}
		entryType, err := enums.ParseBlockedDateType(body.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry type"))
			return
		}
		if body.Reason != nil {
			cleaned := validators.SanitizeString(*body.Reason, 500)
			body.Reason = &cleaned
		}
		entry, err := svc.CreateManual(r.Context(), actor.SupplierID, availability.CreateEntryInput{
			Date:   date,
			Type:   entryType,
			Reason: body.Reason,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

// DeleteBlockedDate removes a manual availability block. Booking-derived
// entries are rejected by the service.
func DeleteBlockedDate(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid entry id"))
			return
		}
		if err := svc.DeleteManual(r.Context(), actor.SupplierID, entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"entryId": entryID.String()})
	}
}
