// Package domain holds the core types and errors of the tally service.
//
// The domain is deliberately small: a single integer counter, its
// persisted record, and the sentinel errors exposed through the public
// API. Everything else in the repository is infrastructure around it.
package domain
