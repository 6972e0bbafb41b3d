package hierarchy

import "github.com/pkg/errors"

// ErrInvalidHierarchy is returned for malformed edges: empty ids, self-loops and cycles.
var ErrInvalidHierarchy = errors.New("invalid hierarchy")
