// Package server runs the document store's HTTP server and shuts it down
// gracefully on SIGTERM, SIGINT or SIGQUIT.
package server
