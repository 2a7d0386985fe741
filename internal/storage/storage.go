// Package storage provides the media a store blob can be persisted to:
// SQLite, a directory of files, or process memory. Each implementation maps
// a string key to an opaque byte slice and replaces the value atomically.
package storage

import "errors"

// ErrNotFound is returned by Load when nothing is stored under the key.
var ErrNotFound = errors.New("storage: key not found")
