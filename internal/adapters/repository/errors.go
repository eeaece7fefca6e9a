package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("product not found")
	ErrDuplicateURL = errors.New("canonical URL already tracked")
)
