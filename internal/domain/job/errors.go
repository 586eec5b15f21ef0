package job

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation failed")
	ErrEvidenceIncomplete = fmt.Errorf("%w: evidence incomplete", ErrValidation)
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrDeleteNotAllowed   = errors.New("only jobs in status pending, en_revision can be deleted")
	ErrJobNotFound        = errors.New("job not found")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}
