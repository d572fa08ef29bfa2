// Package mcp implements the Model Context Protocol (MCP) server for MCPizza.
//
// The server exposes the pizza-ordering workflow to AI assistants as tools:
//
//   - find_stores, get_store_info: locate a store and check it is open
//   - get_menu, search_menu, get_coupons: browse a store
//   - get_ordering_guidance: recommend a coupon and strategy for a request
//   - create_order, add_coupon, add_item_to_order, add_pizza_with_toppings:
//     build the session's order
//   - view_order, clear_order, reopen_order: inspect or reset it
//   - price_order, place_order: run the price, payment and submit phases
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries the protocol; all logging goes to stderr or a file.
//
// # Sessions
//
// Each MCP client session owns at most one order. Calls without a client
// session share the "default" session. Calls for one session run one at a
// time, including any Domino's request they make.
//
// # Tool: add_pizza_with_toppings
//
//	Request:
//	{
//	  "name": "add_pizza_with_toppings",
//	  "arguments": {
//	    "coupon_code": "9204",
//	    "size": "12",
//	    "crust": "NPAN",
//	    "toppings": ["S", "P"]
//	  }
//	}
//
//	Response:
//	{
//	  "added": [
//	    {"code": "9204", "quantity": 1},
//	    {"code": "P12IPAZA+P+S", "quantity": 1, "options": {"P": {"1/1": "1"}, "S": {"1/1": "1"}}}
//	  ],
//	  "description": "medium pizza (P12IPAZA) with italian sausage, pepperoni",
//	  "line_count": 2,
//	  "status": "Draft"
//	}
//
// # Tool: place_order
//
// place_order always re-prices before attaching the card. A Domino's
// rejection is returned as a normal result with "success": false and the
// provider's status codes; a transport failure is returned as an error
// result. Either way the order is left Failed and must be reopened or
// changed before it is priced again.
//
// # Error Handling
//
// Local failures are returned as JSON-RPC errors:
//
//	{
//	  "error": {
//	    "code": -32011,
//	    "message": "no active order; call create_order first"
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params or order specification
//   - -32603: Internal error
//   - -32010: An order is already active for the session
//   - -32011: No active order
//   - -32012: Order not priced
//   - -32013: Rejected by Domino's
//   - -32014: Domino's unreachable
//   - -32015: Order already submitted
//   - -32016: Order is not failed, or must be reopened first
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "mcpizza": {
//	      "command": "/usr/local/bin/mcpizza",
//	      "args": ["serve"]
//	    }
//	  }
//	}
package mcp
