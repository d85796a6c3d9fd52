package fbx

import "errors"

// Decode failures are fatal for the file being read. Callers match on the
// sentinel via errors.Is; wrapping adds offset context.
var (
	ErrMalformedHeader        = errors.New("fbx: malformed header")
	ErrUnknownPropertyType    = errors.New("fbx: unknown property type")
	ErrMalformedArrayEncoding = errors.New("fbx: malformed array encoding")
)
