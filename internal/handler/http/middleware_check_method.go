// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-fuel-sync/internal/utils"
)

// CheckHTTPMethod is registered as the router's MethodNotAllowed handler. It
// answers 404 instead of chi's default 405 when the path exists but the
// method is not routed, so callers cannot probe which routes exist.
//
// Usage:
//
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if router.Match(chi.NewRouteContext(), r.Method, r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}

		utils.WriteError(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	}
}
