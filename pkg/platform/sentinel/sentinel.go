package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in store
// - ErrConflict: a record already occupies the slot being written
// - ErrExpired: draft exceeded its time-to-live
// - ErrCorrupt: stored payload failed to decode
// - ErrUnavailable: store temporarily unreachable
//
// For validation errors (bad input, missing answers), use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrExpired     = errors.New("expired")
	ErrCorrupt     = errors.New("corrupt")
	ErrUnavailable = errors.New("unavailable")
)
