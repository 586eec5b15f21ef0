package evidence

import "errors"

var (
	ErrEvidenceNotFound = errors.New("evidence not found")
	ErrJobNotFound      = errors.New("job not found")
	ErrNotAssignee      = errors.New("job is not assigned to you")
	ErrJobNotPending    = errors.New("evidence can only change while the job is pending")
	ErrInvalidType      = errors.New("type must be photo or signature")
	ErrEmptyFile        = errors.New("file is empty")
	ErrFileTooLarge     = errors.New("file exceeds the 20 MB limit")
	ErrInvalidMimeType  = errors.New("file type is not an allowed image format")
)
