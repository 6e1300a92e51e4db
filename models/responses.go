package models

// PingResponse is returned by GET /api/ping. The client treats any 2xx as
// "remote reachable"; the version is informational.
type PingResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}
