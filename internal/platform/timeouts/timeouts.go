// Package timeouts defines shared timeout constants used across the console.
package timeouts

import "time"

// APIRequest caps a single call from the console to the news API.
const APIRequest = 10 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
