package meshindex

import "errors"

// Index errors.
var (
	ErrNonUnitDirection      = errors.New("ray direction is not a unit vector")
	ErrVertexIndexOutOfRange = errors.New("triangle references a vertex out of range")
)
