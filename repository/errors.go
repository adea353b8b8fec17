package repository

import "errors"

// ErrNotFound is returned by writes that target a record which does not exist.
// Reads follow the nil, nil convention instead.
var ErrNotFound = errors.New("record not found")
