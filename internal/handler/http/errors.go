// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrInvalidRequestBody is returned when the body is not a JSON object.
	ErrInvalidRequestBody = errors.New("request body must be a JSON object")

	// ErrEmptyHashHeader is returned by the signature check when signing is
	// enabled and the request has no HashSHA256 header.
	ErrEmptyHashHeader = errors.New("empty `HashSHA256` header")

	// ErrHashMismatch is returned when the HashSHA256 header does not match
	// the request body.
	ErrHashMismatch = errors.New("integrity check failed")
)
