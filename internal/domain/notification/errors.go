package notification

import "errors"

var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrPushDisabled         = errors.New("web push is not configured")
	ErrInvalidSubscription  = errors.New("invalid push subscription")
)
