package dsort

import "github.com/cockroachdb/errors"

// ErrEmptyInput is returned when a sort is requested over zero chunks.
// Domain arithmetic over an empty collection is undefined, so the condition
// is signalled rather than silently yielding an empty collection.
var ErrEmptyInput = errors.New("dsort: no input chunks")

// ErrInvalidPartitionCount is returned when the requested output partition
// count is not positive.
var ErrInvalidPartitionCount = errors.New("dsort: partition count must be positive")
