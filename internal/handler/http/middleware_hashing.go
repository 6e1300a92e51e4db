package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/utils"
)

// withHashCheck verifies the HMAC-SHA256 of the raw body against the
// HashSHA256 header. It is a pass-through when no hash key is configured.
func (h *Handler) withHashCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.hasher.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		log := logger.FromRequest(r)

		signature := r.Header.Get(utils.HashHeader)
		if signature == "" {
			log.Error().Str("func", "*Handler.withHashCheck").Msg("request is not signed")
			utils.WriteError(w, ErrEmptyHashHeader.Error(), http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			log.Err(err).Str("func", "*Handler.withHashCheck").Msg("failed to read request body")
			utils.WriteError(w, ErrInvalidRequestBody.Error(), http.StatusBadRequest)
			return
		}
		// restore request body
		r.Body = io.NopCloser(bytes.NewReader(body))

		if !h.hasher.Verify(body, signature) {
			log.Error().Str("func", "*Handler.withHashCheck").
				Str("hash from request", signature).
				Msg("hashes are not equal")
			utils.WriteError(w, ErrHashMismatch.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
