package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fort-major/msq-pay/internal/entity"
)

type ErrorResponse struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

func SendJSONErr(ctx context.Context, w http.ResponseWriter, code int, originErr error, msgToSend string) {
	if originErr == nil {
		originErr = errors.New(msgToSend)
	}

	slog.ErrorContext(ctx, "api error", "error", originErr.Error())
	SendJSON(ctx, w, code, ErrorResponse{Message: msgToSend, Description: originErr.Error()})
}

func SendJSON(ctx context.Context, w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		code = http.StatusInternalServerError
		http.Error(w, http.StatusText(code), code)

		slog.ErrorContext(ctx, "encode response", "error", err)
	}
}

// sendErr maps domain errors to status codes. The messages are the ones the payment page
// shows to the user.
func sendErr(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entity.ErrBadRequest), errors.Is(err, entity.ErrInvalidArgument):
		SendJSONErr(ctx, w, http.StatusBadRequest, err, "bad-payment-request")
	case errors.Is(err, entity.ErrInvoiceNotFound):
		SendJSONErr(ctx, w, http.StatusNotFound, err, "invoice-not-found")
	case errors.Is(err, entity.ErrNotFound):
		SendJSONErr(ctx, w, http.StatusNotFound, err, "not found")
	case errors.Is(err, entity.ErrInsufficientBalance):
		SendJSONErr(ctx, w, http.StatusConflict, err, "insufficient-balance")
	case errors.Is(err, entity.ErrInvoicePaid):
		SendJSONErr(ctx, w, http.StatusConflict, err, "invoice-paid")
	case errors.Is(err, entity.ErrNotReady), errors.Is(err, entity.ErrInvalidTransition):
		SendJSONErr(ctx, w, http.StatusConflict, err, "not allowed in the current state")
	default:
		SendJSONErr(ctx, w, http.StatusInternalServerError, err, "internal error")
	}
}

func hexOrEmpty(b []byte) string {
	if len(b) == 0 {
		return ""
	}

	return hex.EncodeToString(b)
}
