package repository

import "errors"

var (
	ErrItemNotFound = errors.New("sync item not found")
	ErrItemExists   = errors.New("sync item already exists")
)
