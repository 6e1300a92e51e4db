package http

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-fuel-sync/internal/service"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/internal/utils"
)

// errorStatuses is checked in order: a transient database failure wrapped
// together with another sentinel must still surface as retryable.
var errorStatuses = []struct {
	target error
	status int
}{
	{store.ErrTransient, http.StatusServiceUnavailable},
	{store.ErrDocumentNotFound, http.StatusNotFound},
	{service.ErrInvalidDataProvided, http.StatusBadRequest},

	{store.ErrBuildingSQLQuery, http.StatusInternalServerError},
	{store.ErrExecutingQuery, http.StatusInternalServerError},
	{store.ErrExecutingStatement, http.StatusInternalServerError},
	{store.ErrScanningRow, http.StatusInternalServerError},
	{store.ErrScanningRows, http.StatusInternalServerError},
	{store.ErrEncodingValue, http.StatusInternalServerError},
}

func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.target) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// writeServiceError maps err to a status. Client errors carry the error
// message, server errors only the status text.
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFromError(err)

	msg := http.StatusText(status)
	if status < http.StatusInternalServerError {
		msg = err.Error()
	}

	utils.WriteError(w, msg, status)
}
