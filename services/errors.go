package services

import (
	"errors"
	"fmt"

	"github.com/yeremiapane/petcare-reservation/repositories"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound           = errors.New("not found")
	ErrBusinessValidation = errors.New("business validation failed")
	ErrConflict           = errors.New("conflict")
)

type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindBusinessValidation ErrorKind = "business_validation"
	KindConflict           ErrorKind = "conflict"
)

// DomainError carries the failing operation and its kind. Message is safe to show to API clients.
type DomainError struct {
	Op      string
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	base := fmt.Sprintf("%s: %s", e.Op, e.Message)
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match the sentinel that belongs to the kind.
func (e *DomainError) Is(target error) bool {
	switch e.Kind {
	case KindNotFound:
		return target == ErrNotFound
	case KindBusinessValidation:
		return target == ErrBusinessValidation
	case KindConflict:
		return target == ErrConflict
	}
	return false
}

func IsKind(err error, kind ErrorKind) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

func notFound(op, format string, args ...any) error {
	return &DomainError{Op: op, Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func validationError(op, format string, args ...any) error {
	return &DomainError{Op: op, Kind: KindBusinessValidation, Message: fmt.Sprintf(format, args...)}
}

func conflictError(op, format string, args ...any) error {
	return &DomainError{Op: op, Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// lookupError turns a missing row into NotFound and passes anything else through.
func lookupError(op string, err error, format string, args ...any) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound(op, format, args...)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// pageError reports an unknown sort field as a validation failure.
func pageError(op string, err error) error {
	if errors.Is(err, repositories.ErrInvalidSortField) {
		return &DomainError{Op: op, Kind: KindBusinessValidation, Message: "invalid sort field", Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
