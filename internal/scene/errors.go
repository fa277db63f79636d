package scene

import "errors"

var (
	ErrUnknownBlueprint = errors.New("unknown blueprint")
	ErrUnknownInstance  = errors.New("unknown instance")
	ErrUnknownPortal    = errors.New("unknown portal")
	ErrUnknownHandler   = errors.New("unknown handler kind")
	ErrDuplicateID      = errors.New("duplicate id")
	ErrInvalidScene     = errors.New("invalid scene")
	ErrDegenerateFace   = errors.New("degenerate portal face")
	ErrUnsupportedFile  = errors.New("unsupported scene file format")
)
