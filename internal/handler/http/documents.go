// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/utils"
	"github.com/MKhiriev/go-fuel-sync/models"
)

// createDocument handles POST /api/documents/{collection}. The body is a JSON
// object of document fields; a string "id" field is used as the document id.
// Responds 201 with {"id": "..."}.
func (h *Handler) createDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")

	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	id, err := h.services.DocumentService.Create(r.Context(), collection, fields)
	if err != nil {
		log.Err(err).Str("func", "*Handler.createDocument").Str("collection", collection).Msg("create failed")
		writeServiceError(w, err)
		return
	}

	if _, err = utils.WriteJSON(w, models.CreateDocumentResponse{ID: id}, http.StatusCreated); err != nil {
		log.Err(err).Str("func", "*Handler.createDocument").Msg("error writing response")
	}
}

// updateDocument handles PATCH /api/documents/{collection}/{id} and responds
// 204 on success.
func (h *Handler) updateDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	patch, ok := decodeFields(w, r)
	if !ok {
		return
	}

	if err := h.services.DocumentService.Update(r.Context(), collection, id, patch); err != nil {
		log.Err(err).Str("func", "*Handler.updateDocument").
			Str("collection", collection).
			Str("id", id).
			Msg("update failed")
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) readDocument(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	doc, err := h.services.DocumentService.Read(r.Context(), collection, id)
	if err != nil {
		log.Debug().Err(err).Str("func", "*Handler.readDocument").
			Str("collection", collection).
			Str("id", id).
			Msg("read failed")
		writeServiceError(w, err)
		return
	}

	if _, err = utils.WriteJSON(w, doc, http.StatusOK); err != nil {
		log.Err(err).Str("func", "*Handler.readDocument").Msg("error writing response")
	}
}

// decodeFields reads a JSON object from the request body. On failure it
// writes 400 and returns false.
func decodeFields(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		logger.FromRequest(r).Err(err).Str("func", "decodeFields").Msg("invalid JSON body")
		utils.WriteError(w, ErrInvalidRequestBody.Error(), http.StatusBadRequest)
		return nil, false
	}
	if fields == nil {
		utils.WriteError(w, ErrInvalidRequestBody.Error(), http.StatusBadRequest)
		return nil, false
	}
	return fields, true
}
