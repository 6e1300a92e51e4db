// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResponseWriter_WriteHeaderOnce(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec}

	w.WriteHeader(http.StatusNotFound)
	w.WriteHeader(http.StatusOK)

	assert.Equal(t, http.StatusNotFound, w.status)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestResponseWriter_WriteImpliesOK(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec}

	n, err := w.Write([]byte("hello"))

	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, http.StatusOK, w.status)
	assert.True(t, w.wroteHeader)
}

func TestResponseWriter_AccumulatesSize(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec}

	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write([]byte("abc"))
	_, _ = w.Write([]byte("defgh"))
	_, _ = w.Write(nil)

	assert.Equal(t, 8, w.size)
	assert.Equal(t, http.StatusCreated, w.status)
	assert.Equal(t, "abcdefgh", rec.Body.String())
}

func TestResponseWriter_ProxiesHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &responseWriter{ResponseWriter: rec}

	w.Header().Set("X-Custom", "v")
	w.WriteHeader(http.StatusOK)

	assert.Equal(t, "v", rec.Header().Get("X-Custom"))
}
