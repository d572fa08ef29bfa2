// Package storefront answers read-only questions about stores, menus and
// deals, and turns a free-text request into ordering guidance.
package storefront
