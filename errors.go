package lantern

import "errors"

var (
	ErrPostExists      = errors.New("post already exists")
	ErrPostNotFound    = errors.New("post not found")
	ErrInvalidPost     = errors.New("invalid post")
	ErrInvalidCategory = errors.New("invalid category id")
	ErrInvalidQuery    = errors.New("invalid query")
)
