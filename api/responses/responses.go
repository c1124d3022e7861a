package responses

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	pkgerrors "github.com/velora-market/velora-backend/pkg/errors"
	"github.com/velora-market/velora-backend/pkg/logger"
	"github.com/velora-market/velora-backend/pkg/types"
)

// WriteSuccess writes data inside the standard success envelope with a 200.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteSuccessStatus(w, http.StatusOK, data)
}

func WriteSuccessStatus(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, types.SuccessEnvelope{Data: data})
}

// WriteError maps err to its HTTP status and envelope, logging the full chain
// server-side. Clients only ever see the public message for internal codes.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	payload := types.ErrorEnvelope{
		Error: types.APIError{
			Code:    string(typed.Code()),
			Message: publicMessage(typed, meta),
		},
	}
	if meta.DetailsAllowed {
		if details := typed.Details(); details != nil {
			payload.Error.Details = details
		}
	}

	if logg != nil {
		logError(ctx, logg, err)
	}

	writeJSON(w, meta.HTTPStatus, payload)
}

// publicMessage returns the error's own message for client-caused codes and
// the generic metadata message for everything else.
func publicMessage(typed *pkgerrors.Error, meta pkgerrors.Metadata) string {
	switch typed.Code() {
	case pkgerrors.CodeValidation,
		pkgerrors.CodeUnauthorized,
		pkgerrors.CodePermissionDenied,
		pkgerrors.CodeNotFound,
		pkgerrors.CodeConflict,
		pkgerrors.CodeFailedPrecondition,
		pkgerrors.CodeIdempotency,
		pkgerrors.CodeRateLimit:
		if m := typed.Message(); m != "" {
			return m
		}
	}
	return meta.PublicMessage
}

func logError(ctx context.Context, logg *logger.Logger, err error) {
	dump := pkgerrors.Dump(err)
	ctx = logg.WithFields(ctx, map[string]any{
		"error":         dump.TopMessage,
		"error_code":    dump.Code,
		"error_chain":   dump.Chain,
		"pg_code":       dump.PGCode,
		"pg_detail":     dump.PGDetail,
		"pg_message":    dump.PGMessage,
		"pg_table":      dump.PGTable,
		"pg_column":     dump.PGColumn,
		"pg_constraint": dump.PGConstraint,
	})
	logg.Error(ctx, "request.error", err)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// The status line is already gone; all we can do is log.
		log.Printf(`{"level":"error","msg":"failed to encode response","err":"%v"}`, err)
	}
}
