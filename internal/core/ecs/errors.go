package ecs

import "errors"

var (
	// ErrInvalidEntity is returned for identifiers that were never allocated
	// or that currently sit in the recycling pool.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrComponentNotFound is returned when a lookup hits an absent or
	// removal-marked component.
	ErrComponentNotFound = errors.New("component not found")

	// ErrStaleEntity is returned by mutating calls on a handle captured
	// before the last flush.
	ErrStaleEntity = errors.New("flushed entity cannot be modified")

	ErrUnknownQueryMode = errors.New("unknown query mode")
	ErrIDSpaceExhausted = errors.New("entity id space exhausted")
	ErrNilComponent     = errors.New("nil component")

	// ErrComponentAttached is returned when a record still held by one
	// entity is attached to another.
	ErrComponentAttached = errors.New("component already attached to another entity")
)
