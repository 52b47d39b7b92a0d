package api

import (
	"context"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/storely/storefront/internal/domain/auth"
)

type apiKeyCtx struct{}

// keyFromContext returns the API key info set by requireAPIKey. It panics
// if called on a route that is not behind the middleware.
func keyFromContext(ctx context.Context) *auth.APIKeyInfo {
	return ctx.Value(apiKeyCtx{}).(*auth.APIKeyInfo)
}

// requireAPIKey authenticates the api_key header against the stored HMAC
// hashes. The raw key never touches the database or the logs.
func (h *Handler) requireAPIKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("api_key")
		if key == "" {
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		info, err := h.apikeys.FindByHash(r.Context(), auth.HashKey(key, h.pepper))
		if err != nil {
			if !errors.Is(err, auth.ErrNotFound) {
				zctx.From(r.Context()).Error("API key lookup failed", zap.Error(err))
				writeError(w, r, http.StatusInternalServerError, "Internal server error")
				return
			}
			writeError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), apiKeyCtx{}, info)))
	}
}
