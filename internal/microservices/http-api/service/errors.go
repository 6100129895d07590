package service

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is against these.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
)

var (
	ErrCommentNotFound      = fmt.Errorf("comment %w", ErrNotFound)
	ErrParentNotFound       = fmt.Errorf("parent comment %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification %w", ErrNotFound)

	ErrNotCommentOwner      = fmt.Errorf("%w: you can only modify your own comments", ErrForbidden)
	ErrEditWindowExpired    = fmt.Errorf("%w: comments can only be edited within the edit window after posting", ErrForbidden)
	ErrRestoreWindowExpired = fmt.Errorf("%w: comments can only be restored within the restore window after deletion", ErrForbidden)

	ErrEmptyContent = fmt.Errorf("%w: content must not be empty", ErrInvalidInput)
)
