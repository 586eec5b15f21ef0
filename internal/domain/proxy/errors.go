package proxy

import (
	"errors"
	"fmt"
)

var (
	ErrMissingURL = errors.New("missing url")
	ErrInvalidURL = errors.New("invalid url")
	ErrForbidden  = errors.New("url outside the evidence store")
)

// UpstreamError carries a non-2xx status from the evidence store.
type UpstreamError struct {
	Status int
	Text   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream responded %d %s", e.Status, e.Text)
}
