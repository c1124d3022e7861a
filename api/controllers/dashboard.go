package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/velora-market/velora-backend/api/responses"
	"github.com/velora-market/velora-backend/internal/dashboard"
	"github.com/velora-market/velora-backend/pkg/config"
	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
	redisclient "github.com/velora-market/velora-backend/pkg/redis"
)

// GetDashboard returns the supplier's dashboard projection.
func GetDashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		projection, err := svc.Get(r.Context(), actor.SupplierID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, projection)
	}
}

// StreamDashboard serves the dashboard over SSE. A snapshot is pushed
// immediately, then a fresh projection every time an invalidation for
// this supplier arrives on the pubsub channel. Keep-alive comments hold
// the connection open through proxies.
func StreamDashboard(svc dashboard.Service, cache *redisclient.Client, cfg config.DashboardConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		sub, err := cache.Subscribe(r.Context(), redisclient.DashboardInvalidationChannel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "subscribe invalidations"))
			return
		}
		defer sub.Close()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		if err := writeDashboardEvent(w, flusher, svc, r, actor); err != nil {
			logg.Error(r.Context(), "dashboard stream snapshot failed", err)
			return
		}

		keepAlive := cfg.StreamKeepAlive
		if keepAlive <= 0 {
			keepAlive = 25 * time.Second
		}
		ticker := time.NewTicker(keepAlive)
		defer ticker.Stop()

		ch := sub.Channel()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-ticker.C:
				if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
					return
				}
				flusher.Flush()
			case msg, open := <-ch:
				if !open {
					return
				}
				if msg.Payload != actor.SupplierID.String() {
					continue
				}
				if err := writeDashboardEvent(w, flusher, svc, r, actor); err != nil {
					logg.Error(r.Context(), "dashboard stream refresh failed", err)
					return
				}
			}
		}
	}
}

func writeDashboardEvent(w http.ResponseWriter, flusher http.Flusher, svc dashboard.Service, r *http.Request, actor requestActor) error {
	projection, err := svc.Get(r.Context(), actor.SupplierID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(projection)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: dashboard\ndata: %s\n\n", payload); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}
