// Package types provides shared type definitions for the MCPizza MCP server.
//
// This package defines the plain data exchanged between the order aggregate,
// the placement coordinator and the commerce gateway: sale lines, customer
// and address records, payments, phase results and the error taxonomy.
//
// # Sale Lines
//
// A SaleLine is either a discount (coupon) code or a priced product:
//
//	line := types.SaleLine{
//	    Code:     "P12IPAZA+P+S",
//	    Quantity: 1,
//	    Options:  map[string]map[string]string{"P": {"1/1": "1"}, "S": {"1/1": "1"}},
//	}
//	line.BaseCode() // "P12IPAZA"
//
// Product codes for customized pizzas are synthesized only by the catalog
// package; callers never build them by hand.
//
// # Validation
//
// Records implement Validate methods that return errors wrapping
// ErrInvalidSpecification:
//
//	if err := customer.Validate(); err != nil {
//	    return err
//	}
//
// # Errors
//
// Every workflow failure matches exactly one sentinel with errors.Is:
//
//	ErrInvalidSpecification  malformed caller input
//	ErrAlreadyActive         an order is already live for the session
//	ErrNoActiveOrder         no order is live for the session
//	ErrNotPriced             phase-ordering violation
//	ErrRemoteRejection       provider validated and declined (*RemoteRejectionError)
//	ErrTransportFailure      network or protocol fault reaching the provider
package types
