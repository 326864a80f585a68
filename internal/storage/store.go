package storage

import "errors"

// ErrNotFound is returned by Load when no value is stored under the key.
var ErrNotFound = errors.New("key not found")
