package story

import "errors"

var (
	ErrNotFound         = errors.New("user story not found")
	ErrExporterDisabled = errors.New("issue tracker export is not configured")
)
