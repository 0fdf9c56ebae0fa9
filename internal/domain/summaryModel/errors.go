package summaryModel

import (
	"errors"
	"fmt"
)

var (
	ErrSummaryNotFound  = errors.New("summary not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTemporary        = errors.New("temporary failure")
)

type Collaborator string

const (
	CollaboratorLoader Collaborator = "loader"
	CollaboratorModel  Collaborator = "model"
	CollaboratorStore  Collaborator = "store"
	CollaboratorCache  Collaborator = "cache"
)

func WrapError(kind error, op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, kind)
	}
	return fmt.Errorf("%s: %w: %w", op, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// NotFound names the missing summary id.
func NotFound(id string) error {
	return fmt.Errorf("summary %q: %w", id, ErrSummaryNotFound)
}

// CollaboratorError tags a failure with the component that produced it.
type CollaboratorError struct {
	Collaborator Collaborator
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func WithCollaborator(c Collaborator, err error) error {
	if err == nil {
		return nil
	}
	var existing *CollaboratorError
	if errors.As(err, &existing) {
		return err
	}
	return &CollaboratorError{Collaborator: c, Err: err}
}

// CollaboratorOf returns the collaborator attached to err, if any.
func CollaboratorOf(err error) (Collaborator, bool) {
	var ce *CollaboratorError
	if errors.As(err, &ce) {
		return ce.Collaborator, true
	}
	return "", false
}
