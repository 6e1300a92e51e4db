package http

import (
	"net/http"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/utils"
	"github.com/MKhiriev/go-fuel-sync/models"
)

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	resp := models.PingResponse{
		Status:  "ok",
		Version: h.services.AppInfoService.GetAppVersion(r.Context()),
	}

	if _, err := utils.WriteJSON(w, resp, http.StatusOK); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "*Handler.ping").Msg("error writing response")
	}
}
