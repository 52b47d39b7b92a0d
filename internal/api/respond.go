package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/storely/storefront/internal/domain/order"
	"github.com/storely/storefront/internal/domain/product"
	"github.com/storely/storefront/internal/domain/store"
)

// errorResponse is the error body shape every consumer of the platform
// already parses: statusCode, a message array, and request metadata.
type errorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    []string `json:"message"`
	Timestamp  string   `json:"timestamp"`
	Path       string   `json:"path"`
	Method     string   `json:"method"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Best effort: the status code is already written.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, messages ...string) {
	writeJSON(w, status, errorResponse{
		StatusCode: status,
		Message:    messages,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       r.URL.Path,
		Method:     r.Method,
	})
}

// writeDomainError maps domain failures onto HTTP statuses: typed order
// errors carry their kind, repository misses become 404, version conflicts
// 409, anything else is logged and reported as 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var oerr *order.Error
	if errors.As(err, &oerr) {
		switch oerr.Kind {
		case order.KindNotFound:
			writeError(w, r, http.StatusNotFound, oerr.Message)
		case order.KindBadRequest:
			writeError(w, r, http.StatusBadRequest, oerr.Message)
		default:
			writeError(w, r, http.StatusInternalServerError, oerr.Message)
		}
		return
	}

	switch {
	case errors.Is(err, order.ErrVersionConflict):
		writeError(w, r, http.StatusConflict, "Order was modified concurrently, retry the update")
	case errors.Is(err, product.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Product Not Found")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "Store Not Found")
	default:
		zctx.From(r.Context()).Error("Unhandled error", zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}
