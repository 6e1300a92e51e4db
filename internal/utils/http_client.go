package utils

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly.
//
// Example usage:
//
//	client := utils.NewHTTPClient("http://localhost:8080", 15*time.Second)
//	resp, err := client.R().Get("/api/ping")
type HTTPClient struct {
	*resty.Client
}

// NewHTTPClient creates an independent HTTPClient rooted at baseURL. A
// positive timeout bounds every request so a hanging remote call cannot
// stall a sync pass.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return &HTTPClient{Client: client}
}
