package backend

import "errors"

var (
	// ErrDuplicateBackend indicates two adapters claimed the same network
	// identifier. This is a startup-time configuration conflict and the only
	// error in this package that should abort the process.
	ErrDuplicateBackend = errors.New("network already has a registered backend")

	// ErrUnsupportedBackend indicates a request named a network with no
	// registered adapter.
	ErrUnsupportedBackend = errors.New("unsupported network")

	// ErrBackendUnavailable indicates a downstream node or explorer call
	// failed (connection refused, timeout, non-success status, malformed
	// body). Adapters wrap every downstream failure with this sentinel.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrValidation indicates malformed or missing arguments, caught before
	// any downstream call is made.
	ErrValidation = errors.New("invalid arguments")

	// ErrRegistryFrozen indicates a registration attempt after the registry
	// transitioned to serving.
	ErrRegistryFrozen = errors.New("registry is frozen")
)
