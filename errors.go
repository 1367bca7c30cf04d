package kdtree

import "github.com/cockroachdb/errors"

var (
	ErrNoDimensions       = errors.New("no dimension keys")
	ErrNilMetric          = errors.New("nil metric")
	ErrNilAccessor        = errors.New("nil accessor")
	ErrEmptyTree          = errors.New("tree is empty")
	ErrInvalidMaxResults  = errors.New("max results must be at least 1")
	ErrInvalidMaxDistance = errors.New("max distance must not be negative")
	ErrInvalidDimension   = errors.New("invalid node dimension")
	ErrInvalidSnapshot    = errors.New("invalid snapshot")
	ErrInvariantViolation = errors.New("k-d invariant violated")
)
