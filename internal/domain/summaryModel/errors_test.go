package summaryModel

import (
	"errors"
	"strings"
	"testing"
)

func TestWrapErrorKeepsKind(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapError(ErrTemporary, "store.summary", cause)

	if !IsKind(err, ErrTemporary) {
		t.Fatalf("expected kind ErrTemporary, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestNotFoundNamesId(t *testing.T) {
	err := NotFound("abc123")
	if !IsKind(err, ErrSummaryNotFound) {
		t.Fatalf("expected not found kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "abc123") {
		t.Errorf("error %q does not name the id", err)
	}
}

func TestCollaboratorError(t *testing.T) {
	err := WithCollaborator(CollaboratorStore, NotFound("x"))
	c, ok := CollaboratorOf(err)
	if !ok || c != CollaboratorStore {
		t.Fatalf("expected store collaborator, got %q %v", c, ok)
	}
	if !IsKind(err, ErrSummaryNotFound) {
		t.Errorf("collaborator wrapping lost the error kind")
	}

	// the innermost collaborator wins
	again := WithCollaborator(CollaboratorModel, err)
	if c, _ := CollaboratorOf(again); c != CollaboratorStore {
		t.Errorf("expected store to be kept, got %q", c)
	}
	if WithCollaborator(CollaboratorLoader, nil) != nil {
		t.Errorf("nil error must stay nil")
	}
}
