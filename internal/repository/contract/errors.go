package contract

import "errors"

// ErrNotFound is returned by services when a requested record does not exist.
var ErrNotFound = errors.New("record not found")
