package models

import (
	"errors"
)

var (
	// ErrAuth means the signed payload failed verification. The request is
	// rejected before any store access.
	ErrAuth = errors.New("invalid init data")

	// ErrNotFound means the operation targets an unknown user id and
	// creating one is not implied (e.g. state sync before registration).
	ErrNotFound = errors.New("user not found")

	// ErrStoreUnavailable wraps backing-store I/O failures. No partial
	// state is committed; the caller may retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)
