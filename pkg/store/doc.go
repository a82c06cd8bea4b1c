// Package store persists the counter record to durable storage.
//
// The default implementation is a JSON file written atomically
// (temp file then rename) so a crash mid-write never leaves a
// half-written record behind. A missing record is not an error;
// the service treats it as a fresh install and starts from zero.
package store
