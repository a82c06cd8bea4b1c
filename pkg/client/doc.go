// Package client is the frontend half of the counter system.
//
// Client issues the three counter requests and classifies transport
// failures (BadUrl, Timeout, NetworkError, BadStatus, BadBody).
// Session layers the Loading/Success/Failure view-state machine on
// top, the shape a UI renders directly.
package client
