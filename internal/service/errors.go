package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller is neither the owner nor a
	// shared member of the entity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyShared means the recipient is already a member of the
	// budget.
	ErrAlreadyShared = errors.New("budget already shared with this user")

	// ErrSelfShare means the share recipient resolved to the caller.
	ErrSelfShare = errors.New("cannot share a budget with yourself")

	// ErrRecipientNotFound means no user has the given email.
	ErrRecipientNotFound = errors.New("no user found with that email")

	// ErrSourceNotFound means copy-previous-month found nothing to copy.
	ErrSourceNotFound = errors.New("no previous month budget to copy from")

	// ErrShareNotFound means the checklist share id resolves to nothing.
	ErrShareNotFound = errors.New("share not found")

	// ErrSystemCategory rejects edits to the synthetic Uncategorized
	// category.
	ErrSystemCategory = errors.New("system category cannot be modified")
)

// ReconciliationWarning reports a spent-delta adjustment that failed
// after its primary write succeeded. It is non-fatal: the transaction
// record is the source of truth and the spent total self-heals on the
// next repair pass. Callers surface it as a notice, never a rollback.
type ReconciliationWarning struct {
	ItemID string
	Delta  float64
	Cause  error
}

func (w *ReconciliationWarning) Error() string {
	return fmt.Sprintf("spent adjustment of %+.2f on item %s pending: %v", w.Delta, w.ItemID, w.Cause)
}

func (w *ReconciliationWarning) Unwrap() error { return w.Cause }

// IsWarning reports whether err consists only of reconciliation
// warnings, i.e. the operation's primary write succeeded.
func IsWarning(err error) bool {
	if err == nil {
		return false
	}
	var w *ReconciliationWarning
	if errors.As(err, &w) {
		// Joined errors are all warnings or the join would carry a
		// non-warning; joins here are only built from warnings.
		return true
	}
	return false
}
