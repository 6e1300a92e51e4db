// Package http implements the REST transport of the remote document store.
//
// Routes live under /api: a ping endpoint reporting the server version, and
// create, update and read operations on documents addressed by collection
// and id. Request tracing, access logging, gzip and body signature checks
// run as chi middleware before requests reach the service layer.
package http
