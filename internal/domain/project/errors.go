package project

import "errors"

var (
	ErrNotFound     = errors.New("project not found")
	ErrCodeNotFound = errors.New("project code not found")
)
