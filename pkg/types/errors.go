package types

import (
	"errors"
	"fmt"
	"strings"
)

// Workflow error taxonomy. Every failure surfaced to a tool caller matches
// exactly one of these with errors.Is.
var (
	// Caller errors: malformed input to classification, creation or payment
	ErrInvalidSpecification = errors.New("invalid specification")

	// Session-state preconditions
	ErrAlreadyActive = errors.New("an order is already active for this session")
	ErrNoActiveOrder = errors.New("no active order; call create_order first")

	// Phase-ordering violation
	ErrNotPriced = errors.New("order is not priced")

	// Remote outcomes
	ErrRemoteRejection  = errors.New("rejected by remote system")
	ErrTransportFailure = errors.New("transport failure reaching remote system")

	// Lifecycle
	ErrOrderClosed    = errors.New("order already submitted")
	ErrNotFailed      = errors.New("order is not in failed state")
	ErrReopenRequired = errors.New("order failed; reopen it or change its lines before placing again")
	ErrAlreadyPaid    = errors.New("order already has payment attached; submit it or change its lines")
)

// RemoteRejectionError carries the provider's structured decline verbatim.
type RemoteRejectionError struct {
	Phase       string // "price" or "submit"
	Reason      string
	StatusItems []StatusItem
}

func (e *RemoteRejectionError) Error() string {
	return fmt.Sprintf("%s phase %v: %s", e.Phase, ErrRemoteRejection, e.Reason)
}

// Is reports a match against ErrRemoteRejection
func (e *RemoteRejectionError) Is(target error) bool {
	return target == ErrRemoteRejection
}

// InvalidField builds an ErrInvalidSpecification naming the offending field.
func InvalidField(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidSpecification, field, reason)
}

// RejectionReason joins status item codes into a single reason string.
// Items are kept in provider order; blank codes are skipped.
func RejectionReason(items []StatusItem) string {
	codes := make([]string, 0, len(items))
	for _, item := range items {
		if item.Code != "" {
			codes = append(codes, item.Code)
		}
	}
	return strings.Join(codes, ",")
}
