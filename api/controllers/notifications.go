package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/velora-market/velora-backend/api/responses"
	"github.com/velora-market/velora-backend/api/validators"
	"github.com/velora-market/velora-backend/internal/notifications"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/pagination"
)

// ListNotifications returns the supplier's notification feed, newest first.
func ListNotifications(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		unreadOnly := false
		if raw := r.URL.Query().Get("unread"); raw != "" {
			unreadOnly, err = strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unread must be a boolean"))
				return
			}
		}
		result, err := svc.List(r.Context(), notifications.ListParams{
			SupplierID: actor.SupplierID,
			Limit:      limit,
			Cursor:     r.URL.Query().Get("cursor"),
			UnreadOnly: unreadOnly,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MarkNotificationRead marks a single notification as read.
func MarkNotificationRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		notificationID, err := uuid.Parse(chi.URLParam(r, "notificationID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid notification id"))
			return
		}
		if err := svc.MarkRead(r.Context(), actor.SupplierID, notificationID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"notificationId": notificationID.String()})
	}
}

// MarkAllNotificationsRead marks every unread notification for the supplier.
func MarkAllNotificationsRead(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.MarkAllRead(r.Context(), actor.SupplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"updated": updated})
	}
}

// UnreadNotificationCount returns the badge count for the supplier.
func UnreadNotificationCount(svc notifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		count, err := svc.UnreadCount(r.Context(), actor.SupplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]int64{"unread": count})
	}
}
