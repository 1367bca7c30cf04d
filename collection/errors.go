package collection

import "github.com/cockroachdb/errors"

var (
	ErrEmptyQueue      = errors.New("empty queue")
	ErrItemNotFound    = errors.New("node not found")
	ErrIndexOutOfRange = errors.New("index out of range")
)
