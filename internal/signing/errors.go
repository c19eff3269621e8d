package signing

import "errors"

var (
	// ErrStoreFileMissing is returned when the keystore referenced by a signing config does not exist.
	ErrStoreFileMissing = errors.New("keystore file does not exist")
	// ErrNoHomeDir is returned when the default debug keystore location cannot be derived.
	ErrNoHomeDir = errors.New("cannot determine home directory for debug keystore")
)
