package services

import "errors"

// ErrorKind classifies engine failures so callers can render distinct
// responses without parsing messages.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota + 1
	KindAlreadyExists
	KindQuotaExceeded
	KindSelfAssignmentForbidden
	KindConfigurationInvalid
	KindPartialDeletionFailure
	KindDelegateFailure
)

// Error is the typed outcome returned by every engine operation that does
// not succeed. AlreadyExists is an idempotent no-op rather than a true
// failure; callers are expected to treat it as such.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func notFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func alreadyExists(msg string) *Error {
	return &Error{Kind: KindAlreadyExists, Message: msg}
}

func quotaExceeded(msg string) *Error {
	return &Error{Kind: KindQuotaExceeded, Message: msg}
}

func selfAssignment(msg string) *Error {
	return &Error{Kind: KindSelfAssignmentForbidden, Message: msg}
}

func configurationInvalid(msg string) *Error {
	return &Error{Kind: KindConfigurationInvalid, Message: msg}
}

func partialDeletion(msg string) *Error {
	return &Error{Kind: KindPartialDeletionFailure, Message: msg}
}

func delegateFailure(msg string) *Error {
	return &Error{Kind: KindDelegateFailure, Message: msg}
}

// KindOf returns the engine error kind, or 0 for plain errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
