package session

import "errors"

var (
	// ErrRegistrationFailed indicates the store rejected or could not
	// complete a registration. It is never caused by the session limit,
	// which is resolved internally by eviction.
	ErrRegistrationFailed = errors.New("session.registration_failed")

	// ErrInvalidSession indicates a session with missing identifiers.
	ErrInvalidSession = errors.New("session.invalid")

	// ErrStoreUnavailable indicates the backing store could not be reached.
	ErrStoreUnavailable = errors.New("session.store_unavailable")

	// ErrRegistryClosed indicates the registry has been shut down.
	ErrRegistryClosed = errors.New("session.registry_closed")
)
