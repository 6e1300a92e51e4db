package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/utils"
	"github.com/MKhiriev/go-fuel-sync/models"
)

const traceIDHeader = "X-Trace-ID"

type httpRemoteStore struct {
	client *utils.HTTPClient
	hasher *utils.Hasher

	logger *logger.Logger
}

// NewHTTPRemoteStore constructs an HTTP/REST implementation of [RemoteStore].
// It normalises and validates the base URL from adapterCfg.HTTPAddress and
// bounds every request with adapterCfg.RequestTimeout. When appCfg.HashKey is
// set, every request body is signed in the HashSHA256 header.
//
// Returns an error if adapterCfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteStore(adapterCfg config.ClientAdapter, appCfg config.ClientApp, logger *logger.Logger) (RemoteStore, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	return &httpRemoteStore{
		client: utils.NewHTTPClient(baseURL, adapterCfg.RequestTimeout),
		hasher: utils.NewHasher(appCfg.HashKey),
		logger: logger,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Create implements [RemoteStore]. It POSTs fields to
// POST /api/documents/{collection} and returns the id from the response body.
func (h *httpRemoteStore) Create(ctx context.Context, collection string, fields map[string]any) (string, error) {
	req, err := h.request(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	var created models.CreateDocumentResponse
	resp, err := req.
		SetResult(&created).
		SetPathParam("collection", collection).
		Post("/api/documents/{collection}")
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("create response: empty document id")
	}

	h.logger.Debug().
		Str("func", "httpRemoteStore.Create").
		Str("collection", collection).
		Str("id", created.ID).
		Msg("document created")

	return created.ID, nil
}

// Update implements [RemoteStore]. It PATCHes
// /api/documents/{collection}/{id} with patch.
func (h *httpRemoteStore) Update(ctx context.Context, collection, id string, patch map[string]any) error {
	req, err := h.request(ctx, patch)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}

	resp, err := req.
		SetPathParams(map[string]string{"collection": collection, "id": id}).
		Patch("/api/documents/{collection}/{id}")
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}

	return mapHTTPError(resp)
}

// Read implements [RemoteStore]. A 404 is reported as found == false rather
// than an error.
func (h *httpRemoteStore) Read(ctx context.Context, collection, id string) (models.Document, bool, error) {
	req, err := h.request(ctx, nil)
	if err != nil {
		return models.Document{}, false, fmt.Errorf("read request: %w", err)
	}

	resp, err := req.
		SetPathParams(map[string]string{"collection": collection, "id": id}).
		Get("/api/documents/{collection}/{id}")
	if err != nil {
		return models.Document{}, false, fmt.Errorf("read request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.Document{}, false, nil
		}
		return models.Document{}, false, err
	}

	var doc models.Document
	if err = json.Unmarshal(resp.Body(), &doc); err != nil {
		return models.Document{}, false, fmt.Errorf("decode document: %w", err)
	}

	return doc, true, nil
}

// Ping implements [RemoteStore] with GET /api/ping.
func (h *httpRemoteStore) Ping(ctx context.Context) error {
	req, err := h.request(ctx, nil)
	if err != nil {
		return fmt.Errorf("ping request: %w", err)
	}

	resp, err := req.Get("/api/ping")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	return mapHTTPError(resp)
}

// request prepares a request carrying ctx, the trace id and, for a non-nil
// body, the JSON payload and its signature.
func (h *httpRemoteStore) request(ctx context.Context, body any) (*resty.Request, error) {
	req := h.client.R().SetContext(ctx)

	if traceID, ok := utils.GetTraceIDFromContext(ctx); ok {
		req.SetHeader(traceIDHeader, traceID)
	}

	if body == nil {
		return req, nil
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	req.SetHeader("Content-Type", "application/json").SetBody(payload)
	if h.hasher.Enabled() {
		req.SetHeader(utils.HashHeader, h.hasher.Sign(payload))
	}

	return req, nil
}
