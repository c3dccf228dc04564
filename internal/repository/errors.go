// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrConflict is returned when a write would break a uniqueness rule of the
// stored collection, such as appending a match whose id is already taken.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrMatchNotFound is returned by the by-id match operations when no record
// carries the requested id.
var ErrMatchNotFound = errors.New("match not found")
