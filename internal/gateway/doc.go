// Package gateway talks to the external commerce system.
//
// The Gateway interface is what the rest of the server depends on; tests
// substitute fakes. DominosClient is the HTTP implementation for the
// Domino's ordering API:
//
//	GET  /power/store-locator?s=&c=&type=
//	GET  /power/store/{id}/profile
//	GET  /power/store/{id}/menu?lang=en&structured=true
//	POST /power/price-order   {"Order": {...}}
//	POST /power/place-order   {"Order": {...}}
//
// A reply with Status -1 is a structured rejection; its status item codes
// are reported verbatim. Lookups are retried with exponential backoff on
// network errors and 5xx answers. Price and place requests are sent exactly
// once. Menus are cached per store in an expiring LRU.
package gateway
