package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/api/responses"
	"github.com/velora-market/velora-backend/api/validators"
	"github.com/velora-market/velora-backend/internal/bookings"
	"github.com/velora-market/velora-backend/pkg/enums"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/pagination"
)

type rejectBookingRequest struct {
	Reason *string `json:"reason" validate:"omitempty,max=1000"`
}

type cancelBookingRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type bookingNotesRequest struct {
	SupplierNotes *string `json:"supplierNotes" validate:"omitempty,max=4000"`
}

func bookingTransitionInput(r *http.Request) (bookings.TransitionInput, error) {
	actor, err := actorFromRequest(r)
	if err != nil {
		return bookings.TransitionInput{}, err
	}
	bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
	if err != nil {
		return bookings.TransitionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id")
	}
	return bookings.TransitionInput{
		BookingID:       bookingID,
		ActorUserID:     actor.UserID,
		ActorSupplierID: actor.SupplierID,
		ActorRole:       string(actor.Role),
	}, nil
}

func transitionHandler(logg *logger.Logger, apply func(context.Context, bookings.TransitionInput) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := bookingTransitionInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := apply(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"bookingId": input.BookingID.String()})
	}
}

// ConfirmBooking accepts a pending booking.
func ConfirmBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(logg, svc.Confirm)
}

// StartBooking marks a confirmed booking's service delivery as underway.
func StartBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(logg, svc.Start)
}

// CompleteBooking closes out an in-progress booking.
func CompleteBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(logg, svc.Complete)
}

// RejectBooking declines a pending booking with an optional reason.
func RejectBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := bookingTransitionInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body rejectBookingRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &body); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if err := svc.Reject(r.Context(), bookings.RejectInput{TransitionInput: input, Reason: body.Reason}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"bookingId": input.BookingID.String()})
	}
}

// CancelBooking cancels a confirmed booking. The reason is mandatory.
func CancelBooking(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := bookingTransitionInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body cancelBookingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Cancel(r.Context(), bookings.CancelInput{TransitionInput: input, Reason: body.Reason}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"bookingId": input.BookingID.String()})
	}
}

// UpdateBookingNotes patches the supplier-facing notes on a booking.
func UpdateBookingNotes(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := bookingTransitionInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body bookingNotesRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.SupplierNotes != nil {
			cleaned := validators.SanitizeString(*body.SupplierNotes, 4000)
			body.SupplierNotes = &cleaned
		}
		notes := bookings.NotesInput{
			BookingID:       input.BookingID,
			ActorUserID:     input.ActorUserID,
			ActorSupplierID: input.ActorSupplierID,
			ActorRole:       input.ActorRole,
			SupplierNotes:   body.SupplierNotes,
		}
		if err := svc.UpdateSupplierNotes(r.Context(), notes); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"bookingId": input.BookingID.String()})
	}
}

// ListBookings returns the supplier's bookings with cursor pagination.
func ListBookings(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters := bookings.ListFilters{
			Query: strings.TrimSpace(r.URL.Query().Get("q")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseBookingStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if from, err := validators.ParseQueryDate(r, "dateFrom"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if !from.IsZero() {
			filters.DateFrom = &from
		}
		if to, err := validators.ParseQueryDate(r, "dateTo"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if !to.IsZero() {
			filters.DateTo = &to
		}

		result, err := svc.List(r.Context(), actor.SupplierID, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// GetBookingDetail returns the full booking view including ui flags.
func GetBookingDetail(svc bookings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bookingID, err := uuid.Parse(chi.URLParam(r, "bookingID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid booking id"))
			return
		}
		detail, err := svc.Detail(r.Context(), actor.SupplierID, bookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
