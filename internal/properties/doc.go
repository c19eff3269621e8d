// Package properties reads flat key=value files such as the Android
// key.properties used for release signing. A missing file is not an error:
// Load reports it as absent so callers can fall back to another identity.
package properties
