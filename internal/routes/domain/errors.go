package domain

import "errors"

var (
	ErrNotFound     = errors.New("route not found")
	ErrPathConflict = errors.New("path already exists")
	ErrForbidden    = errors.New("not the owner")
)
