package domain

import "errors"

// ErrDraftNotFound is returned when a draft ID cannot be found in the store.
var ErrDraftNotFound = errors.New("draft not found")

// ErrUnknownLessonType is returned when a lesson type tag is not one of the supported variants.
var ErrUnknownLessonType = errors.New("unknown lesson type")

// ErrSessionClosed is returned when an operation targets an editing session that has ended.
var ErrSessionClosed = errors.New("editing session closed")

// ErrDraftSealed is returned when a stored draft is encrypted and no key is
// configured to open it.
var ErrDraftSealed = errors.New("draft is encrypted")
