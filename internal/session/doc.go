// Package session holds the active order for each conversation.
//
// Orders are keyed by MCP client session id, so concurrent conversations
// never share an order. A transport without session identity falls back to a
// single "default" session.
package session
