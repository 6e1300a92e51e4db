// Package config provides configuration loading, merging, and validation
// facilities for the fuel-sync client and the document store server.
//
// Configuration is assembled from multiple sources. For every field the
// first source that sets a non-zero value wins:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry points are [GetClientConfig] for the sync client and
// [GetServerConfig] for the document store server; both build on
// [GetStructuredConfig].
package config
