package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dshills/mcpizza/pkg/types"
)

// MCP error codes, one per failure kind
const (
	ErrorCodeInvalidParams     = -32602 // Invalid method parameters or order specification
	ErrorCodeInternalError     = -32603 // Internal JSON-RPC error
	ErrorCodeAlreadyActive     = -32010 // Session already holds an order
	ErrorCodeNoActiveOrder     = -32011 // create_order has not been called
	ErrorCodeNotPriced         = -32012 // Payment or submit attempted before a fresh price
	ErrorCodeRemoteRejection   = -32013 // Domino's refused the request
	ErrorCodeTransportFailure  = -32014 // Domino's could not be reached or answered garbage
	ErrorCodeOrderClosed       = -32015 // Order already submitted
	ErrorCodeOrderStateFailure = -32016 // Reopen of a non-failed order, or pricing a failed or paid one
)

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
	cause   error
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// Unwrap exposes the workflow error the MCPError was built from
func (e *MCPError) Unwrap() error { return e.cause }

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// toMCPError maps a workflow error onto its MCP error code. Errors that are
// already MCPErrors pass through.
func toMCPError(err error) error {
	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return err
	}

	data := map[string]interface{}{"error": err.Error()}
	code := ErrorCodeInternalError
	switch {
	case errors.Is(err, types.ErrInvalidSpecification):
		code = ErrorCodeInvalidParams
	case errors.Is(err, types.ErrAlreadyActive):
		code = ErrorCodeAlreadyActive
		data["hint"] = "call clear_order, or create_order with replace=true"
	case errors.Is(err, types.ErrNoActiveOrder):
		code = ErrorCodeNoActiveOrder
	case errors.Is(err, types.ErrNotPriced):
		code = ErrorCodeNotPriced
	case errors.Is(err, types.ErrRemoteRejection):
		code = ErrorCodeRemoteRejection
		var rej *types.RemoteRejectionError
		if errors.As(err, &rej) {
			data["phase"] = rej.Phase
			data["rejection_reason"] = rej.Reason
			data["status_items"] = rej.StatusItems
		}
	case errors.Is(err, types.ErrTransportFailure):
		code = ErrorCodeTransportFailure
	case errors.Is(err, types.ErrOrderClosed):
		code = ErrorCodeOrderClosed
		data["hint"] = "call create_order with replace=true to start a new order"
	case errors.Is(err, types.ErrNotFailed), errors.Is(err, types.ErrReopenRequired), errors.Is(err, types.ErrAlreadyPaid):
		code = ErrorCodeOrderStateFailure
	}

	return &MCPError{Code: code, Message: err.Error(), Data: data, cause: err}
}

// missingParam is the error for an absent or empty required argument
func missingParam(name string) error {
	return newMCPError(ErrorCodeInvalidParams, name+" parameter is required", map[string]interface{}{
		"param":  name,
		"reason": "missing or empty",
	})
}

// formatJSON formats a value as indented JSON
func formatJSON(data interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}
