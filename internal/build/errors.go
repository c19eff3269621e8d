package build

import "errors"

var (
	// ErrUnknownBuildType is returned when the requested build type is not declared.
	ErrUnknownBuildType = errors.New("unknown build type")
	// ErrReleaseSigningUnavailable is returned when release signing is required but key.properties is absent.
	ErrReleaseSigningUnavailable = errors.New("release signing requested but properties file is absent")
)
