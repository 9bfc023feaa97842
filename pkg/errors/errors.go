package errors

import (
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound is returned when a resource does not exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when the caller has no usable identity
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// ErrInvalidStateTransition is returned when a state machine is driven out of order
type ErrInvalidStateTransition struct {
	From any
	To   any
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %v to %v", e.From, e.To)
}

// ErrValidation carries per-field messages keyed by field name
type ErrValidation struct {
	Fields map[string]string
}

func (e *ErrValidation) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ErrStockExceeded is returned when a requested quantity is above live stock.
// It is raised locally and never sent to the backend.
type ErrStockExceeded struct {
	ProductID string
	Requested string
	Available string
}

func (e *ErrStockExceeded) Error() string {
	return fmt.Sprintf("requested quantity %s for product %s exceeds available stock %s", e.Requested, e.ProductID, e.Available)
}

// ErrInvalidQuantity is returned for quantities outside the accepted range
type ErrInvalidQuantity struct {
	ProductID string
	Quantity  string
	Reason    string
}

func (e *ErrInvalidQuantity) Error() string {
	return fmt.Sprintf("invalid quantity %s for product %s: %s", e.Quantity, e.ProductID, e.Reason)
}

// ErrEmptyCart is returned when checkout is attempted without items
type ErrEmptyCart struct{}

func (e *ErrEmptyCart) Error() string {
	return "cart is empty"
}

// ErrRemoteCall wraps a transport, authorization or business failure from the backend.
// Message is the backend's text, suitable for showing to the user as-is.
type ErrRemoteCall struct {
	Operation string
	Message   string
	Err       error
}

func (e *ErrRemoteCall) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

func (e *ErrRemoteCall) Unwrap() error {
	return e.Err
}
