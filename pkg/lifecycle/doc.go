// Package lifecycle provides the state machine that governs starting
// and stopping the counter service: Stopped, Starting, Running,
// Stopping, Crashed, with graceful shutdown under a timeout.
package lifecycle
