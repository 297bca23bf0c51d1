package release

import "errors"

var ErrNotFound = errors.New("release plan not found")
